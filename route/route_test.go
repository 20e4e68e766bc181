package route_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/port"
	"github.com/xavier-caroff/synapse/route"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	enqueued []*message.Message
}

func (d *recordingDispatcher) Enqueue(msg *message.Message, source *port.Port, r *route.Route) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, msg)
}

type recordingConsumer struct {
	mu       sync.Mutex
	consumed []*message.Message
}

func (c *recordingConsumer) Consume(msg *message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumed = append(c.consumed, msg)
}

func TestRouteDispatchEnqueuesOnDispatcher(t *testing.T) {
	d := &recordingDispatcher{}
	src := port.New("source-block", "default")
	r := &route.Route{Name: "r1", Sources: []*port.Port{src}, Dispatcher: d}

	msg := message.NewFromBytes([]byte("payload"))
	r.Dispatch(msg, src)

	require.Len(t, d.enqueued, 1)
	require.Equal(t, msg, d.enqueued[0])
}

func TestRouteDeliverFansOutToAllDestinations(t *testing.T) {
	c1 := &recordingConsumer{}
	c2 := &recordingConsumer{}
	r := &route.Route{Name: "r1", Destinations: []route.Consumer{c1, c2}}

	msg := message.NewFromBytes([]byte("payload"))
	r.Deliver(msg)

	require.Len(t, c1.consumed, 1)
	require.Len(t, c2.consumed, 1)
}
