package manager_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/manager"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/metrics"
	"github.com/xavier-caroff/synapse/registry"
)

// multiPortBlock declares two output ports, to exercise AmbiguousPort.
type multiPortBlock struct {
	name  string
	ports map[string]block.Port
}

func newMultiPortBlock(name string) (block.Block, error) {
	return &multiPortBlock{name: name}, nil
}

func (b *multiPortBlock) Name() string { return b.name }

func (b *multiPortBlock) DeclaredPorts(config []byte) ([]string, error) {
	return []string{"port-a", "port-b"}, nil
}

func (b *multiPortBlock) Initialize(config []byte, mgr block.Manager) error {
	b.ports = make(map[string]block.Port)
	for _, name := range []string{"port-a", "port-b"} {
		p, err := mgr.Port(b.name, name)
		if err != nil {
			return err
		}
		b.ports[name] = p
	}
	return nil
}

func (b *multiPortBlock) Shutdown() {}

// recordingSink is a consumer-only block with no ports, used as a route
// destination in tests.
type recordingSink struct {
	name     string
	messages [][]byte
}

func newRecordingSink(name string) (block.Block, error) {
	return &recordingSink{name: name}, nil
}

func (s *recordingSink) Name() string                                  { return s.name }
func (s *recordingSink) Initialize(config []byte, mgr block.Manager) error { return nil }
func (s *recordingSink) Shutdown()                                     {}
func (s *recordingSink) Consume(msg *message.Message)                  { s.messages = append(s.messages, msg.Bytes()) }

func newTestRegistry() *registry.Registry {
	reg := registry.New(nil)
	reg.Register(block.Descriptor{ClassName: "multiport", New: newMultiPortBlock})
	reg.Register(block.Descriptor{ClassName: "sink", New: newRecordingSink})
	return reg
}

func TestManagerRejectsAmbiguousSource(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "src", ClassName: "multiport"},
			{Name: "dst", ClassName: "sink"},
		},
		Routes: []manager.RouteConfig{
			{Sources: []string{"src"}, Destinations: []string{"dst"}},
		},
	}

	err := m.Initialize(cfg)
	require.Error(t, err)
}

func TestManagerAcceptsExplicitPort(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "src", ClassName: "multiport"},
			{Name: "dst", ClassName: "sink"},
		},
		Routes: []manager.RouteConfig{
			{Sources: []string{"src.port-a"}, Destinations: []string{"dst"}},
		},
	}

	require.NoError(t, m.Initialize(cfg))
}

func TestManagerRejectsInvalidName(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "Bad_Name", ClassName: "sink"},
		},
	}

	require.Error(t, m.Initialize(cfg))
}

func TestManagerRejectsDuplicateBlockName(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "dup", ClassName: "sink"},
			{Name: "dup", ClassName: "sink"},
		},
	}

	require.Error(t, m.Initialize(cfg))
}

func TestManagerRejectsReservedDispatcherName(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "src", ClassName: "multiport"},
			{Name: "dst", ClassName: "sink"},
		},
		Routes: []manager.RouteConfig{
			{Dispatcher: "default", Sources: []string{"src.port-a"}, Destinations: []string{"dst"}},
		},
	}

	require.Error(t, m.Initialize(cfg))
}

func TestManagerRunDeliversEndToEnd(t *testing.T) {
	reg := newTestRegistry()
	m := manager.New(reg, nil, metrics.New(nil))

	cfg := manager.Config{
		Blocks: []manager.BlockConfig{
			{Name: "src", ClassName: "multiport"},
			{Name: "dst", ClassName: "sink"},
		},
		Routes: []manager.RouteConfig{
			{Sources: []string{"src.port-a"}, Destinations: []string{"dst"}},
		},
	}
	require.NoError(t, m.Initialize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- m.Run(ctx) }()

	b, ok := m.Find("src")
	require.True(t, ok)
	mb := b.(*multiPortBlock)
	mb.ports["port-a"].Dispatch(message.NewFromBytes([]byte("hello")))

	time.Sleep(100 * time.Millisecond)

	m.Shutdown()
	cancel()

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	dst, ok := m.Find("dst")
	require.True(t, ok)
	sink := dst.(*recordingSink)
	require.Len(t, sink.messages, 1)
	require.Equal(t, "hello", string(sink.messages[0]))
}

func TestParseConfigRejectsMissingBlockName(t *testing.T) {
	raw, err := json.Marshal(manager.Config{
		Blocks: []manager.BlockConfig{{ClassName: "sink"}},
	})
	require.NoError(t, err)

	_, err = manager.ParseConfig(raw)
	require.Error(t, err)
}
