// Package route implements the binding between a set of source ports and a
// set of destination blocks, carried by one dispatcher.
package route

import (
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/port"
)

// Dispatcher is the narrow view of a dispatcher a Route needs: enqueue a
// request for later delivery.
type Dispatcher interface {
	Enqueue(msg *message.Message, source *port.Port, route *Route)
}

// Consumer is the narrow view of a destination block a Route needs.
type Consumer interface {
	Consume(msg *message.Message)
}

// Route is owned by the Manager. It never deletes its source ports or
// destination consumers; they are borrowed references that outlive the
// route for the duration of the run.
type Route struct {
	Name         string
	Sources      []*port.Port
	Destinations []Consumer
	Dispatcher   Dispatcher
}

// Dispatch forwards msg, attributed to source, to the route's dispatcher.
// Ownership of destinations is by reference; Route never deletes them.
func (r *Route) Dispatch(msg *message.Message, source *port.Port) {
	r.Dispatcher.Enqueue(msg, source, r)
}

// Deliver invokes Consume on every destination, in the route's declared
// order. Called by the dispatcher's worker goroutine when draining a
// request for this route.
func (r *Route) Deliver(msg *message.Message) {
	for _, d := range r.Destinations {
		d.Consume(msg)
	}
}
