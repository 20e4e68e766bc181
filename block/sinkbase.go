package block

import (
	"sync"

	"github.com/xavier-caroff/synapse/message"
)

// Processor is the subclass hook SinkBase drains its queue into. It is
// called on SinkBase's own worker goroutine, never concurrently with
// itself, so an embedder needs no additional locking around the state
// Process touches.
type Processor interface {
	Process(msg *message.Message)
}

// SinkBase implements the Consumer+Runnable half of the Sink role described
// by the specification: Consume enqueues under a mutex and signals a
// condition variable; Run drains the queue on a dedicated goroutine,
// calling the embedder's process for each message in arrival order. This
// is the same mutex+sync.Cond queue/wake idiom the Dispatcher uses for its
// own request queue, applied here to a single consumer's backlog instead
// of a whole route's.
//
// Embedders provide Process(msg *message.Message) and construct SinkBase
// with NewSinkBase(embedder), embedded by pointer so the struct is never
// copied after its sync.Cond is wired to its own mutex, e.g.:
//
//	type Sink struct {
//	    *block.SinkBase
//	    ...
//	}
//	s := &Sink{...}
//	s.SinkBase = block.NewSinkBase(s)
type SinkBase struct {
	processor Processor

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*message.Message
	shutdown bool
}

// NewSinkBase constructs a SinkBase that drains into processor.
func NewSinkBase(processor Processor) *SinkBase {
	b := &SinkBase{processor: processor}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Consume implements block.Consumer: enqueue msg and wake the worker.
func (b *SinkBase) Consume(msg *message.Message) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	b.cond.Signal()
}

// Run implements block.Runnable: drain the queue until shutdown is
// observed and the queue is empty. Intended to run on its own goroutine
// for the lifetime of the graph.
func (b *SinkBase) Run() error {
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.shutdown {
			b.cond.Wait()
		}
		if len(b.queue) == 0 && b.shutdown {
			b.mu.Unlock()
			return nil
		}

		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, msg := range batch {
			b.processor.Process(msg)
		}
	}
}

// RequestShutdown sets the shutdown flag and wakes the worker. Any
// messages still queued at the moment shutdown is observed are drained
// before Run returns; messages enqueued afterward are dropped.
func (b *SinkBase) RequestShutdown() {
	b.mu.Lock()
	b.shutdown = true
	b.mu.Unlock()
	b.cond.Broadcast()
}
