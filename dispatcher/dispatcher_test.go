package dispatcher_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/dispatcher"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/port"
	"github.com/xavier-caroff/synapse/route"
)

type recordingConsumer struct {
	mu       sync.Mutex
	consumed [][]byte
	done     chan struct{}
	want     int
}

func newRecordingConsumer(want int) *recordingConsumer {
	return &recordingConsumer{done: make(chan struct{}), want: want}
}

func (c *recordingConsumer) Consume(msg *message.Message) {
	c.mu.Lock()
	c.consumed = append(c.consumed, msg.Bytes())
	n := len(c.consumed)
	c.mu.Unlock()
	if n == c.want {
		close(c.done)
	}
}

func TestDispatcherDeliversEnqueuedRequests(t *testing.T) {
	d := dispatcher.New("default", nil, nil)
	consumer := newRecordingConsumer(3)
	src := port.New("source-block", "default")
	r := &route.Route{Name: "r1", Destinations: []route.Consumer{consumer}, Dispatcher: d}

	go d.Run()
	defer d.RequestShutdown()

	for i := 0; i < 3; i++ {
		d.Enqueue(message.NewFromBytes([]byte{byte(i)}), src, r)
	}

	select {
	case <-consumer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	require.Len(t, consumer.consumed, 3)
}

type panickingConsumer struct{}

func (panickingConsumer) Consume(msg *message.Message) { panic("boom") }

func TestDispatcherSurvivesConsumerPanic(t *testing.T) {
	d := dispatcher.New("default", nil, nil)
	consumer := newRecordingConsumer(1)
	src := port.New("source-block", "default")

	panicRoute := &route.Route{Name: "panics", Destinations: []route.Consumer{panickingConsumer{}}, Dispatcher: d}
	okRoute := &route.Route{Name: "ok", Destinations: []route.Consumer{consumer}, Dispatcher: d}

	go d.Run()
	defer d.RequestShutdown()

	d.Enqueue(message.NewFromBytes([]byte("x")), src, panicRoute)
	d.Enqueue(message.NewFromBytes([]byte("y")), src, okRoute)

	select {
	case <-consumer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher stalled after a consumer panic")
	}
}

func TestDispatcherRequestShutdownStopsRun(t *testing.T) {
	d := dispatcher.New("default", nil, nil)
	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	d.RequestShutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after RequestShutdown")
	}
}
