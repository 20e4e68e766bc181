package moduleloader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xavier-caroff/synapse/moduleloader"
	"github.com/xavier-caroff/synapse/registry"
)

// A real .so plugin can't be built or loaded without invoking the Go
// toolchain, so these tests exercise the parts of Load that don't require
// one: a missing extra directory, or no extra directory at all, contributes
// nothing and is not an error, matching the specification's "unrecognized module symbols are
// not errors" propagation policy extended to missing directories.
func TestLoadIgnoresMissingExtraDirectory(t *testing.T) {
	reg := registry.New(nil)

	err := moduleloader.Load(reg, []string{"/nonexistent/path/for/synapse/tests"})
	require.NoError(t, err)
	require.Empty(t, reg.ClassNames())
}

func TestLoadWithNoExtraDirsSucceeds(t *testing.T) {
	reg := registry.New(nil)

	err := moduleloader.Load(reg, nil)
	require.NoError(t, err)
}
