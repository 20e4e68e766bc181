// Package consolesink implements a Sink that writes every consumed message
// to standard output, one per line — chiefly useful for demos and tests.
package consolesink

import (
	"bufio"
	"os"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "consolesink"

// Sink writes each consumed message to os.Stdout. It embeds block.SinkBase
// for the Consumer+Runnable queue/worker half of the role (spec's Sink
// base); Process is its worker-thread hook.
type Sink struct {
	*block.SinkBase

	name string

	mu  sync.Mutex
	out *bufio.Writer
}

// New is a block.Factory for the consolesink class.
func New(name string) (block.Block, error) {
	s := &Sink{name: name, out: bufio.NewWriter(os.Stdout)}
	s.SinkBase = block.NewSinkBase(s)
	return s, nil
}

// Register adds the consolesink class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (s *Sink) Name() string { return s.name }

// Initialize implements block.Lifecycle. Console output needs no
// configuration.
func (s *Sink) Initialize(rawConfig []byte, mgr block.Manager) error {
	return nil
}

// Process implements block.Processor, called on SinkBase's worker
// goroutine for each queued message in arrival order.
func (s *Sink) Process(msg *message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Write(msg.Bytes())
	s.out.WriteByte('\n')
	s.out.Flush()
}

// Shutdown implements block.Lifecycle.
func (s *Sink) Shutdown() {
	s.SinkBase.RequestShutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Flush()
}
