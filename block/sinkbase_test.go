package block_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/message"
)

type recordingProcessor struct {
	*block.SinkBase

	mu        sync.Mutex
	processed [][]byte
	done      chan struct{}
	want      int
}

func newRecordingProcessor(want int) *recordingProcessor {
	p := &recordingProcessor{done: make(chan struct{}), want: want}
	p.SinkBase = block.NewSinkBase(p)
	return p
}

func (p *recordingProcessor) Process(msg *message.Message) {
	p.mu.Lock()
	p.processed = append(p.processed, msg.Bytes())
	n := len(p.processed)
	p.mu.Unlock()
	if n == p.want {
		close(p.done)
	}
}

func TestSinkBaseDrainsInArrivalOrder(t *testing.T) {
	p := newRecordingProcessor(3)

	go p.Run()
	defer p.RequestShutdown()

	p.Consume(message.NewFromBytes([]byte("a")))
	p.Consume(message.NewFromBytes([]byte("b")))
	p.Consume(message.NewFromBytes([]byte("c")))

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SinkBase to drain its queue")
	}

	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, p.processed)
}

func TestSinkBaseRequestShutdownDrainsThenStopsRun(t *testing.T) {
	p := newRecordingProcessor(2)

	runDone := make(chan struct{})
	go func() {
		p.Run()
		close(runDone)
	}()

	p.Consume(message.NewFromBytes([]byte("x")))
	p.Consume(message.NewFromBytes([]byte("y")))
	p.RequestShutdown()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after RequestShutdown")
	}

	require.Len(t, p.processed, 2)
}
