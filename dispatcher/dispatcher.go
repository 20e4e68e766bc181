// Package dispatcher implements the named, threaded serializer that
// decouples producers from consumers: a FIFO request queue with a single
// worker goroutine draining it.
package dispatcher

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/metrics"
	"github.com/xavier-caroff/synapse/port"
	"github.com/xavier-caroff/synapse/route"
)

// request is one queued (message, source-port, route) triple.
type request struct {
	msg    *message.Message
	source *port.Port
	route  *route.Route
}

// Dispatcher is a named, threaded serializer. Its queue has no declared
// capacity — a slow consumer backs up its own dispatcher's queue, never
// any other dispatcher's, which is the deliberate back-pressure mechanism
// the specification calls for. The mutex+condition-variable idiom mirrors
// pkg/buffer's circular buffer in the teacher, generalized from a bounded
// ring to an unbounded FIFO since no overflow policy applies here.
type Dispatcher struct {
	name    string
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []request
	shutdown bool
}

// New creates a Dispatcher named name. metrics may be nil.
func New(name string, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{name: name, logger: logger, metrics: m}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Name returns the dispatcher's configured name.
func (d *Dispatcher) Name() string { return d.name }

// Enqueue pushes a request under lock and signals the condition. It
// satisfies route.Dispatcher.
func (d *Dispatcher) Enqueue(msg *message.Message, source *port.Port, r *route.Route) {
	d.mu.Lock()
	d.queue = append(d.queue, request{msg: msg, source: source, route: r})
	depth := len(d.queue)
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.DispatcherQueueDepth.WithLabelValues(d.name).Set(float64(depth))
	}
	d.cond.Signal()
}

// RequestShutdown sets the shutdown flag and wakes the worker. Remaining
// queued requests are discarded once observed — the system is not
// delivery-guaranteed on termination.
func (d *Dispatcher) RequestShutdown() {
	d.mu.Lock()
	d.shutdown = true
	d.mu.Unlock()
	d.cond.Broadcast()
}

// Run is the dispatcher's main loop, intended to run on its own goroutine
// for the lifetime of the graph. It returns once shutdown has been
// requested.
func (d *Dispatcher) Run() error {
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.shutdown {
			d.cond.Wait()
		}
		if d.shutdown {
			d.mu.Unlock()
			return nil
		}

		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		if d.metrics != nil {
			d.metrics.DispatcherQueueDepth.WithLabelValues(d.name).Set(0)
		}

		for _, req := range batch {
			d.deliver(req)
		}
	}
}

func (d *Dispatcher) deliver(req request) {
	requestID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("consumer panicked, dispatcher continues",
				"dispatcher", d.name, "route", req.route.Name, "request", requestID, "panic", r)
		}
	}()

	req.route.Deliver(req.msg)

	if d.metrics != nil {
		d.metrics.MessagesForwarded.WithLabelValues(d.name, req.route.Name).Inc()
	}
}
