// Package framer implements the stream-to-record extractor domain
// plug-in: a Fiber that pulls variable-length records out of a byte
// stream, framed by configurable start and end delimiter sequences.
package framer

import (
	"encoding/json"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "framer"

const outputPortName = "default"

const defaultBufferSize = 1024

// Config is the Framer's per-block configuration document. Start and End
// are given in source form (may contain the escape sequences \a \b \f \n
// \r \t \v \0 \\ \' \"), normalized to their single-byte equivalents at
// Initialize time.
type Config struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	BufferSize int    `json:"bufferSize"`
}

// Framer extracts frames bounded by start/end byte sequences from inbound
// messages, emitting each on its sole output port "default".
type Framer struct {
	name string

	mu         sync.Mutex
	start      []byte
	end        []byte
	bufferSize int
	buffer     []byte
	skipped    int

	outputPort block.Port
}

// New is a block.Factory for the framer class.
func New(name string) (block.Block, error) {
	return &Framer{name: name}, nil
}

// Register adds the framer class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (f *Framer) Name() string { return f.name }

// DeclaredPorts implements block.Producer: the Framer always owns exactly
// one output port, "default", regardless of configuration.
func (f *Framer) DeclaredPorts(config []byte) ([]string, error) {
	return []string{outputPortName}, nil
}

// Initialize implements block.Lifecycle.
func (f *Framer) Initialize(rawConfig []byte, mgr block.Manager) error {
	var cfg Config
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "Framer", "Initialize", f.name)
		}
	}

	start := normalizeEscapes(cfg.Start)
	if len(start) == 0 {
		return synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "Framer", "Initialize", f.name+": start must be non-empty")
	}
	end := normalizeEscapes(cfg.End)

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	port, err := mgr.Port(f.name, outputPortName)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.start = start
	f.end = end
	f.bufferSize = bufferSize
	f.outputPort = port
	f.mu.Unlock()
	return nil
}

// Shutdown implements block.Lifecycle. The Framer holds no resources that
// need releasing beyond its in-memory buffer.
func (f *Framer) Shutdown() {}

// Consume implements block.Consumer. It is safe to call concurrently from
// multiple dispatcher goroutines (if the Framer is wired as a destination
// of routes on more than one dispatcher); state is protected by f.mu.
func (f *Framer) Consume(msg *message.Message) {
	if msg.Len() == 0 {
		return
	}

	f.mu.Lock()

	var data []byte
	if len(f.buffer) == 0 {
		data = msg.Bytes()
	} else {
		combined := make([]byte, len(f.buffer)+msg.Len())
		copy(combined, f.buffer)
		copy(combined[len(f.buffer):], msg.Bytes())
		if len(combined) > f.bufferSize {
			dropped := len(combined) - f.bufferSize
			f.skipped += dropped
			combined = combined[dropped:]
		}
		data = combined
	}

	result := scan(data, f.start, f.end)
	f.skipped += result.skipped

	tail := result.tail
	if len(tail) > f.bufferSize {
		dropped := len(tail) - f.bufferSize
		f.skipped += dropped
		tail = tail[dropped:]
	}
	f.buffer = tail

	port := f.outputPort
	f.mu.Unlock()

	for _, frame := range result.frames {
		port.Dispatch(message.Wrap(frame))
	}
}

// SkippedCount returns the cumulative number of bytes the Framer has
// discarded (garbage between frames, or bytes dropped to stay within
// bufferSize). Exposed for tests and diagnostics.
func (f *Framer) SkippedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skipped
}
