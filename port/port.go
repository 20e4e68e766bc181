// Package port implements a block's declared output endpoint.
package port

import (
	"sync"

	"github.com/xavier-caroff/synapse/message"
)

// Dispatchable is the narrow view of a Route a Port needs: forward a
// message, attributing it to this port as the source.
type Dispatchable interface {
	Dispatch(msg *message.Message, source *Port)
}

// Port is the output endpoint identified by (owning block, port-name). It
// holds an ordered, deduplicated list of attached routes. Ports are owned
// by the Manager and live for the duration of the run; they are mutated
// only during graph build and are read-only thereafter, so Dispatch needs
// no locking once the graph is built. Attach still locks defensively since
// it may be called while other goroutines are not yet running (graph
// build is single-threaded in practice, but nothing prevents a future
// caller from relaxing that).
type Port struct {
	mu        sync.Mutex
	blockName string
	name      string
	routes    []Dispatchable
}

// New creates a Port owned by blockName with the given port-name.
func New(blockName, name string) *Port {
	return &Port{blockName: blockName, name: name}
}

// BlockName returns the name of the block that owns this port.
func (p *Port) BlockName() string { return p.blockName }

// Name returns the port's own name.
func (p *Port) Name() string { return p.name }

// Attach appends route to the port's attachment list if it is not already
// attached (identity compare).
func (p *Port) Attach(route Dispatchable) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range p.routes {
		if r == route {
			return
		}
	}
	p.routes = append(p.routes, route)
}

// Dispatch forwards msg to every attached route, in insertion order.
func (p *Port) Dispatch(msg *message.Message) {
	p.mu.Lock()
	routes := p.routes
	p.mu.Unlock()

	for _, r := range routes {
		r.Dispatch(msg, p)
	}
}
