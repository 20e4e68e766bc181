// Package stdinsource implements a Source that reads lines from the
// process's standard input and emits each as a message.
package stdinsource

import (
	"bufio"
	"os"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "stdinsource"

const outputPortName = "default"

// Source reads newline-delimited records from os.Stdin.
type Source struct {
	name string

	mu         sync.Mutex
	outputPort block.Port

	shutdown chan struct{}
	once     sync.Once
}

// New is a block.Factory for the stdinsource class.
func New(name string) (block.Block, error) {
	return &Source{name: name, shutdown: make(chan struct{})}, nil
}

// Register adds the stdinsource class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (s *Source) Name() string { return s.name }

// DeclaredPorts implements block.Producer.
func (s *Source) DeclaredPorts(config []byte) ([]string, error) {
	return []string{outputPortName}, nil
}

// Initialize implements block.Lifecycle.
func (s *Source) Initialize(rawConfig []byte, mgr block.Manager) error {
	port, err := mgr.Port(s.name, outputPortName)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.outputPort = port
	s.mu.Unlock()
	return nil
}

// Shutdown implements block.Lifecycle.
func (s *Source) Shutdown() {
	s.once.Do(func() { close(s.shutdown) })
}

// Run implements block.Runnable. Stdin has no interruptible read in the
// standard library, so Run relies on the scanner reaching EOF (typically
// because the peer closed the pipe) to terminate in response to Shutdown;
// an explicit Shutdown only short-circuits dispatch of lines already read.
func (s *Source) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-s.shutdown:
			return nil
		default:
		}
		s.outputPort.Dispatch(message.NewFromBytes(scanner.Bytes()))
	}
	return scanner.Err()
}
