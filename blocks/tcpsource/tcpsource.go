// Package tcpsource implements a Source that dials a TCP endpoint and
// emits each read as a message on its sole output port, reconnecting with
// backoff on transient connection failures.
package tcpsource

import (
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/pkg/retry"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "tcpsource"

const outputPortName = "default"

const defaultReadBufferSize = 4096

// Config is the TCP source's per-block configuration document.
type Config struct {
	Address        string `json:"address"`
	ReadBufferSize int    `json:"readBufferSize"`
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Address == "" {
		return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "tcpsource.Config", "Validate", "address is required")
	}
	return nil
}

// Source dials a TCP address and forwards every read as a message. It owns
// a dedicated goroutine via Run and stops when Shutdown is called.
type Source struct {
	name string

	mu             sync.Mutex
	address        string
	readBufferSize int
	outputPort     block.Port

	shutdown chan struct{}
	once     sync.Once
}

// New is a block.Factory for the tcpsource class.
func New(name string) (block.Block, error) {
	return &Source{name: name, shutdown: make(chan struct{})}, nil
}

// Register adds the tcpsource class to reg.
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
	var cfg Config
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "tcpsource.Source", "Initialize", s.name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	bufSize := cfg.ReadBufferSize
	if bufSize <= 0 {
		bufSize = defaultReadBufferSize
	}

	port, err := mgr.Port(s.name, outputPortName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.address = cfg.Address
	s.readBufferSize = bufSize
	s.outputPort = port
	s.mu.Unlock()
	return nil
}

// Shutdown implements block.Lifecycle.
func (s *Source) Shutdown() {
	s.once.Do(func() { close(s.shutdown) })
}

// Run implements block.Runnable: dials, reads until the connection drops or
// Shutdown fires, then reconnects with backoff, then repeats. Returns nil
// on an orderly shutdown.
func (s *Source) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.shutdown
		cancel()
	}()

	for {
		// Each call to Do runs its own bounded exponential backoff burst
		// (pkg/retry.Persistent's 30 attempts up to a 10s cap); a burst
		// that exhausts itself without the address becoming reachable
		// simply starts a fresh one, so the source keeps trying to
		// reconnect for the lifetime of the run.
		conn, err := retry.DoWithResult(ctx, retry.Persistent(), func() (net.Conn, error) {
			return net.Dial("tcp", s.address)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		s.readLoop(conn)
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *Source) readLoop(conn net.Conn) {
	buf := make([]byte, s.readBufferSize)
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		n, err := conn.Read(buf)
		if n > 0 {
			s.outputPort.Dispatch(message.NewFromBytes(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
