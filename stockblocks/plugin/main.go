// Command plugin is not a command: it is a demonstration of the dynamic
// module ABI, built with `go build -buildmode=plugin -o example.so` and
// dropped next to the synapse binary (or into a folder listed in the
// configuration's additionalPackageFolders) to be
// picked up by moduleloader.Load. It exports a single block class,
// "echo", that has no practical use beyond proving the plug-in path works
// end to end without the static stockblocks.Register call.
package main

import (
	"github.com/xavier-caroff/synapse/block"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/registry"
)

// main is required so this file satisfies package main for `go build
// ./...`; it is never invoked when the package is built with
// -buildmode=plugin and loaded via moduleloader.Load, which resolves
// RegisterBlocks instead of running an entry point.
func main() {}

const className = "echo"

type echoBlock struct {
	name string
	port block.Port
}

func newEcho(name string) (block.Block, error) {
	return &echoBlock{name: name}, nil
}

func (e *echoBlock) Name() string { return e.name }

func (e *echoBlock) DeclaredPorts(config []byte) ([]string, error) {
	return []string{"default"}, nil
}

func (e *echoBlock) Initialize(config []byte, mgr block.Manager) error {
	port, err := mgr.Port(e.name, "default")
	if err != nil {
		return err
	}
	e.port = port
	return nil
}

func (e *echoBlock) Shutdown() {}

func (e *echoBlock) Consume(msg *message.Message) {
	e.port.Dispatch(message.NewFromBytes(msg.Bytes()))
}

// RegisterBlocks is the symbol moduleloader.Load resolves by name; its
// signature must be func(*registry.Registry) error exactly.
func RegisterBlocks(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: newEcho})
	return nil
}
