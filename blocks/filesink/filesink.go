// Package filesink implements a Sink that appends every consumed message,
// newline-terminated, to a file on disk.
package filesink

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "filesink"

// Config is the file sink's per-block configuration document.
type Config struct {
	Path   string `json:"path"`
	Append bool   `json:"append"`
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Path == "" {
		return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "filesink.Config", "Validate", "path is required")
	}
	return nil
}

// Sink appends each consumed message to a file, one per line. It embeds
// block.SinkBase for the Consumer+Runnable queue/worker half of the role
// (spec's Sink base); Process is its worker-thread hook.
type Sink struct {
	*block.SinkBase

	name string

	mu   sync.Mutex
	file *os.File
}

// New is a block.Factory for the filesink class.
func New(name string) (block.Block, error) {
	s := &Sink{name: name}
	s.SinkBase = block.NewSinkBase(s)
	return s, nil
}

// Register adds the filesink class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (s *Sink) Name() string { return s.name }

// Initialize implements block.Lifecycle.
func (s *Sink) Initialize(rawConfig []byte, mgr block.Manager) error {
	var cfg Config
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "filesink.Sink", "Initialize", s.name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(cfg.Path, flags, 0o644)
	if err != nil {
		return synerrors.WrapFatal(err, "filesink.Sink", "Initialize", cfg.Path)
	}

	s.mu.Lock()
	s.file = f
	s.mu.Unlock()
	return nil
}

// Process implements block.Processor, called on SinkBase's worker
// goroutine for each queued message in arrival order.
func (s *Sink) Process(msg *message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	s.file.Write(msg.Bytes())
	s.file.Write([]byte("\n"))
}

// Shutdown implements block.Lifecycle.
func (s *Sink) Shutdown() {
	s.SinkBase.RequestShutdown()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}
