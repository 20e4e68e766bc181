// Package stockblocks registers every block class shipped with the engine
// itself: the domain plug-ins (framer, prefix router) and the concrete
// I/O blocks (TCP source, stdin source, file sink, console sink, WebSocket
// sink). Third-party block classes are added the same way, either statically
// (their own Register function called alongside this one) or dynamically,
// via moduleloader.
package stockblocks

import (
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/registry"

	"github.com/xavier-caroff/synapse/blocks/consolesink"
	"github.com/xavier-caroff/synapse/blocks/filesink"
	"github.com/xavier-caroff/synapse/blocks/stdinsource"
	"github.com/xavier-caroff/synapse/blocks/tcpsource"
	"github.com/xavier-caroff/synapse/blocks/wsoutput"
	"github.com/xavier-caroff/synapse/plugins/framer"
	"github.com/xavier-caroff/synapse/plugins/prefixrouter"
)

// Register adds every stock block class to reg.
func Register(reg *registry.Registry) error {
	if reg == nil {
		return synerrors.WrapFatal(synerrors.ErrModuleLoadFailure, "stockblocks", "Register", "registry is nil")
	}

	registrars := []struct {
		name string
		fn   func(*registry.Registry) error
	}{
		{"framer", framer.Register},
		{"prefixrouter", prefixrouter.Register},
		{"tcpsource", tcpsource.Register},
		{"stdinsource", stdinsource.Register},
		{"filesink", filesink.Register},
		{"consolesink", consolesink.Register},
		{"wsoutput", wsoutput.Register},
	}

	for _, r := range registrars {
		if err := r.fn(reg); err != nil {
			return synerrors.WrapInvalid(err, "stockblocks", "Register", r.name)
		}
	}
	return nil
}
