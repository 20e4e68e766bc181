package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/registry"
)

func fakeFactory(name string) (block.Block, error) { return nil, nil }

func TestRegistryFindReturnsRegisteredDescriptor(t *testing.T) {
	reg := registry.New(nil)
	reg.Register(block.Descriptor{ClassName: "widget", New: fakeFactory})

	d, err := reg.Find("widget")
	require.NoError(t, err)
	require.Equal(t, "widget", d.ClassName)
}

func TestRegistryFindUnknownClassFails(t *testing.T) {
	reg := registry.New(nil)

	_, err := reg.Find("missing")
	require.Error(t, err)
}

func TestRegistryDuplicateRegistrationKeepsFirst(t *testing.T) {
	reg := registry.New(nil)
	firstCalled := false
	first := func(name string) (block.Block, error) {
		firstCalled = true
		return nil, nil
	}
	second := func(name string) (block.Block, error) { return nil, nil }

	reg.Register(block.Descriptor{ClassName: "widget", New: first})
	reg.Register(block.Descriptor{ClassName: "widget", New: second})

	d, err := reg.Find("widget")
	require.NoError(t, err)
	require.NotNil(t, d.New)
	_, _ = d.New("widget")
	require.True(t, firstCalled, "the first registered factory must be kept")
}

func TestRegistryClassNames(t *testing.T) {
	reg := registry.New(nil)
	reg.Register(block.Descriptor{ClassName: "a", New: fakeFactory})
	reg.Register(block.Descriptor{ClassName: "b", New: fakeFactory})

	names := reg.ClassNames()
	require.ElementsMatch(t, []string{"a", "b"}, names)
}
