// Package registry maps block class-names to the factories that build
// them, populated once during module load and read-only thereafter.
package registry

import (
	"log/slog"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
)

// Registry is the process-wide class-name -> factory map. It is safe for
// concurrent reads once module load has finished; Register itself is
// synchronized so loading from several modules concurrently is also safe,
// though the Manager loads modules single-threaded in practice.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]block.Descriptor
	logger  *slog.Logger
}

// New creates an empty Registry. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{entries: make(map[string]block.Descriptor), logger: logger}
}

// Register inserts d if its class-name is not already present. Duplicate
// registrations are silently ignored beyond a warning log line — first
// registration wins, per the engine's documented (if under-documented in
// the original) idempotent-load behavior.
func (r *Registry) Register(d block.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.ClassName]; exists {
		r.logger.Warn("duplicate block class registration ignored", "className", d.ClassName)
		return
	}
	r.entries[d.ClassName] = d
}

// Find returns the descriptor for className, or ErrUnknownClass if none was
// ever registered.
func (r *Registry) Find(className string) (block.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.entries[className]
	if !ok {
		return block.Descriptor{}, synerrors.WrapInvalid(synerrors.ErrUnknownClass, "Registry", "Find", className)
	}
	return d, nil
}

// ClassNames returns the currently registered class-names, for diagnostics.
func (r *Registry) ClassNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
