// Package block defines the capability contract every graph node implements.
//
// A block is an opaque identity plus capability queries, not a fat interface.
// Instead of requiring a type to implement Producer, Consumer, and Runnable
// all at once (multiple-interface inheritance), the Manager queries each
// capability as needed with a type assertion: AsProducer, AsConsumer,
// AsRunnable. A type implementing two or more capabilities composes the
// concrete roles Source (Producer+Runnable), Fiber (Producer+Consumer), and
// Sink (Consumer+Runnable) for free.
package block

import "github.com/xavier-caroff/synapse/message"

// Block is the minimum any graph node must satisfy: an addressable identity.
// Everything else is capability, queried via AsProducer/AsConsumer/AsRunnable.
type Block interface {
	// Name returns the block's stable identity, unique across the graph.
	Name() string
}

// Manager is the narrow view of the graph orchestrator a block is allowed to
// see during Initialize — enough to look up its own ports, never enough to
// mutate the graph.
type Manager interface {
	// Port returns the named output port owned by block name.
	Port(blockName, portName string) (Port, error)
}

// Port is the view of a port a Producer uses to emit messages, without
// exposing route-attachment machinery to block implementations.
type Port interface {
	Dispatch(msg *message.Message)
}

// Producer declares the set of output ports it owns, as a function of its
// own configuration. Called once during graph build, before Initialize,
// with the same raw per-block configuration document Initialize will
// later receive.
type Producer interface {
	DeclaredPorts(config []byte) ([]string, error)
}

// Consumer accepts a message handed to it by a dispatcher thread. Consume
// must be safe to call concurrently from any dispatcher goroutine and must
// not block the caller for longer than the consumer's own queueing allows.
type Consumer interface {
	Consume(msg *message.Message)
}

// Runnable owns a dedicated goroutine for the lifetime of the run. Run must
// return once Shutdown has been observed.
type Runnable interface {
	Run() error
}

// Lifecycle is implemented by every block so the Manager can drive
// initialization and shutdown uniformly regardless of role.
type Lifecycle interface {
	// Initialize is called once, after every block and port in the graph
	// exists, with the block's own configuration document and a narrow
	// Manager view for port lookups.
	Initialize(config []byte, mgr Manager) error

	// Shutdown requests orderly termination from a foreign goroutine. It
	// must not block and must be idempotent.
	Shutdown()
}

// AsProducer returns b's Producer capability, if any.
func AsProducer(b Block) (Producer, bool) {
	p, ok := b.(Producer)
	return p, ok
}

// AsConsumer returns b's Consumer capability, if any.
func AsConsumer(b Block) (Consumer, bool) {
	c, ok := b.(Consumer)
	return c, ok
}

// AsRunnable returns b's Runnable capability, if any.
func AsRunnable(b Block) (Runnable, bool) {
	r, ok := b.(Runnable)
	return r, ok
}

// AsLifecycle returns b's Lifecycle capability. Every registered block must
// implement it; the Manager treats its absence as a programming error.
func AsLifecycle(b Block) (Lifecycle, bool) {
	l, ok := b.(Lifecycle)
	return l, ok
}

// IsConsumer reports whether b exposes the Consumer role, the check the
// Manager performs on every route destination (NotAConsumer kind).
func IsConsumer(b Block) bool {
	_, ok := AsConsumer(b)
	return ok
}
