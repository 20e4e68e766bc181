// Package moduleloader discovers and loads block-providing plug-ins.
//
// Two mechanisms coexist, mirroring the engine specification's own notes
// on module plug-ins:
//
//   - Static registration (the primary, recommended mechanism): a Go
//     package exposes a Register(*registry.Registry) error function, which
//     an importer calls directly at process start. stockblocks.Register is
//     the default module built this way.
//   - Dynamic loading via the standard library's plugin package: a shared
//     object built with `go build -buildmode=plugin` exporting a symbol
//     named RegisterBlocks with signature func(*registry.Registry) error.
//     This exists because the specification explicitly calls for "the
//     platform's standard dynamic-library facility"; Go's plugin package
//     is that facility, and no third-party library in the ecosystem
//     improves on it for this narrow use.
package moduleloader

import (
	"os"
	"path/filepath"
	"plugin"

	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/registry"
)

const pluginExtension = ".so"

const registerSymbol = "RegisterBlocks"

// Load scans the executable's own directory plus each entry of extraDirs
// for shared-library files, and for each one that resolves a
// RegisterBlocks symbol, invokes it against reg. A relative entry of
// extraDirs is resolved against the executable's own directory, per the
// specification's module-loading order; an absolute entry is used as-is.
// Files that are not Go plug-ins, or that do not export the symbol, are
// silently skipped — not every file of the right extension is a module.
// Errors returned by a resolved RegisterBlocks call propagate to the
// caller.
func Load(reg *registry.Registry, extraDirs []string) error {
	exeDir, err := executableDir()
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(extraDirs)+1)
	dirs = append(dirs, exeDir)
	for _, dir := range extraDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(exeDir, dir)
		}
		dirs = append(dirs, dir)
	}

	for _, dir := range dirs {
		if err := loadDir(reg, dir); err != nil {
			return err
		}
	}
	return nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func loadDir(reg *registry.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// A configured additional folder that does not exist is not fatal:
		// it simply contributes no modules.
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != pluginExtension {
			continue
		}
		if err := loadFile(reg, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(reg *registry.Registry, path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		// Not every .so is a Go plug-in; resolution failure is not an error.
		return nil
	}

	sym, err := p.Lookup(registerSymbol)
	if err != nil {
		// No registration entry point: a library that happens to share the
		// extension, not a module.
		return nil
	}

	// plugin.Open returns a symbol with its exact compile-time type, which
	// for a plug-in's exported RegisterBlocks is this unnamed function
	// type — asserting against a named type with the same underlying type
	// would never match, since a plug-in's top-level func declaration is
	// always of the unnamed type.
	register, ok := sym.(func(*registry.Registry) error)
	if !ok {
		return nil
	}

	if err := register(reg); err != nil {
		return synerrors.WrapFatal(synerrors.ErrModuleLoadFailure, "moduleloader", "loadFile", path)
	}
	return nil
}
