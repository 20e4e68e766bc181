// Package synapse provides an in-process message-routing engine: a
// configuration-driven graph of blocks connected by ports, routes, and
// dispatchers.
//
// # Architecture
//
// A running engine is built from a JSON configuration document describing
// blocks and routes, and is assembled in three passes by the Manager:
//
//	┌─────────────────────────────────────┐
//	│             Manager                 │  graph build, lifecycle,
//	│   (Initialize, Run, Shutdown)        │  shutdown orchestration
//	└─────────────────────────────────────┘
//	           ↓ builds and drives
//	┌─────────────────────────────────────┐
//	│   Blocks (Source / Fiber / Sink)    │  Producer / Consumer /
//	│                                      │  Runnable capabilities
//	└─────────────────────────────────────┘
//	           ↓ connected by
//	┌─────────────────────────────────────┐
//	│      Ports, Routes, Dispatchers      │  fan-out, serialization,
//	│                                      │  back-pressure
//	└─────────────────────────────────────┘
//
// # Blocks
//
// A block is an addressable identity (block.Block) that opts into
// capabilities via plain type assertions rather than a fat interface:
// Producer (declares output ports), Consumer (accepts messages), Runnable
// (owns a dedicated goroutine), and Lifecycle (initialize/shutdown, which
// every block implements). The concrete roles a reader will recognize from
// the stock block set are Source (Producer+Runnable, e.g. blocks/tcpsource),
// Fiber (Producer+Consumer, e.g. plugins/framer, plugins/prefixrouter), and
// Sink (Consumer+Runnable, e.g. blocks/filesink).
//
// # Graph plumbing
//
// A port (package port) is a block's named output: an ordered, deduplicated
// list of attached routes. A route (package route) binds a set of source
// ports to a set of destination consumers, through exactly one dispatcher.
// A dispatcher (package dispatcher) is a named FIFO worker: a single
// goroutine draining a request queue, which is both the engine's
// serialization boundary (all consumers behind one dispatcher see messages
// in submission order) and its back-pressure mechanism (a slow consumer
// backs up only its own dispatcher's queue).
//
// # Extending the engine
//
// New block classes register a Descriptor (package-level class name plus
// factory) with a registry.Registry, either statically — a package exposes
// a Register(*registry.Registry) error function, the pattern stockblocks
// uses to wire in the bundled block classes — or dynamically, via a Go
// plug-in (package moduleloader) built with `go build -buildmode=plugin`
// and exporting RegisterBlocks with the same signature.
//
// Package synapse itself exports nothing; it exists to host this
// documentation and anchor the module's import path. Callers assemble an
// engine from the manager, registry, stockblocks, and block packages, as
// cmd/synapse does.
package synapse
