package prefixrouter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/harness"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/plugins/prefixrouter"
)

func newRouter(t *testing.T, cfg prefixrouter.Config) (*prefixrouter.PrefixRouter, *harness.FakeManager) {
	t.Helper()

	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	mgr := harness.NewFakeManager()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	names, err := r.DeclaredPorts(raw)
	require.NoError(t, err)
	for _, name := range names {
		mgr.AddPort("router-under-test", name)
	}

	require.NoError(t, r.Initialize(raw, mgr))
	return r, mgr
}

func TestPrefixRouterMatchTable(t *testing.T) {
	cfg := prefixrouter.Config{
		Routes: []prefixrouter.RouteEntry{
			{Port: "gps", Patterns: []string{"$GP"}},
			{Port: "ais", Patterns: []string{"!AI"}},
		},
		Fallback: "other",
	}
	r, mgr := newRouter(t, cfg)

	cases := []struct {
		input string
		port  string
	}{
		{"$GPGGA,...", "gps"},
		{"!AIVDM,...", "ais"},
		{"garbage", "other"},
	}

	for _, tc := range cases {
		r.Consume(message.NewFromBytes([]byte(tc.input)))
		port, err := mgr.Port("router-under-test", tc.port)
		require.NoError(t, err)
		fp := port.(*harness.FakePort)
		require.Lenf(t, fp.Messages, 1, "expected %q to route to %s", tc.input, tc.port)
	}
}

func TestPrefixRouterNoFallbackDropsUnmatched(t *testing.T) {
	cfg := prefixrouter.Config{
		Routes: []prefixrouter.RouteEntry{
			{Port: "gps", Patterns: []string{"$GP"}},
		},
	}
	r, mgr := newRouter(t, cfg)

	r.Consume(message.NewFromBytes([]byte("garbage")))

	port, err := mgr.Port("router-under-test", "gps")
	require.NoError(t, err)
	require.Empty(t, port.(*harness.FakePort).Messages)
}

func TestPrefixRouterRejectsPatternConflict(t *testing.T) {
	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	cfg := prefixrouter.Config{
		Routes: []prefixrouter.RouteEntry{
			{Port: "a", Patterns: []string{"$GP"}},
			{Port: "b", Patterns: []string{"$GP"}},
		},
	}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	mgr := harness.NewFakeManager()
	mgr.AddPort("router-under-test", "a")
	mgr.AddPort("router-under-test", "b")

	require.Error(t, r.Initialize(raw, mgr))
}

func TestPrefixRouterRejectsPrefixConflict(t *testing.T) {
	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	cfg := prefixrouter.Config{
		Routes: []prefixrouter.RouteEntry{
			{Port: "a", Patterns: []string{"$GP"}},
			{Port: "b", Patterns: []string{"$GPGGA"}},
		},
	}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	mgr := harness.NewFakeManager()
	mgr.AddPort("router-under-test", "a")
	mgr.AddPort("router-under-test", "b")

	require.Error(t, r.Initialize(raw, mgr))
}

func TestPrefixRouterRejectsEmptyPattern(t *testing.T) {
	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	cfg := prefixrouter.Config{
		Routes: []prefixrouter.RouteEntry{
			{Port: "a", Patterns: []string{""}},
		},
	}
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	mgr := harness.NewFakeManager()
	mgr.AddPort("router-under-test", "a")

	require.Error(t, r.Initialize(raw, mgr))
}

func TestPrefixRouterDeclaredPortsNoRouteNoFallback(t *testing.T) {
	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	raw, err := json.Marshal(prefixrouter.Config{})
	require.NoError(t, err)

	_, err = r.DeclaredPorts(raw)
	require.Error(t, err)
}

func TestPrefixRouterDeclaredPortsRejectsFallbackOnlyWithNoPatterns(t *testing.T) {
	b, err := prefixrouter.New("router-under-test")
	require.NoError(t, err)
	r := b.(*prefixrouter.PrefixRouter)

	raw, err := json.Marshal(prefixrouter.Config{Fallback: "other"})
	require.NoError(t, err)

	_, err = r.DeclaredPorts(raw)
	require.Error(t, err, "a configured fallback does not excuse having zero non-empty patterns")
}
