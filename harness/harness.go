// Package harness provides fake ports and a fake manager for exercising
// domain plug-ins (Framer, Prefix Router) without a real graph. Modeled on
// the teacher's testutil mock-component idiom: a struct with recorded
// calls and optional func fields, no semantic domain knowledge.
package harness

import (
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
)

// FakePort records every message dispatched to it, in order.
type FakePort struct {
	mu       sync.Mutex
	Messages [][]byte
}

// Dispatch implements block.Port.
func (p *FakePort) Dispatch(msg *message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, append([]byte(nil), msg.Bytes()...))
}

// Reset clears recorded messages.
func (p *FakePort) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = nil
}

// FakeManager is a minimal block.Manager backed by a fixed set of
// FakePorts, keyed by "block.port".
type FakeManager struct {
	mu    sync.Mutex
	ports map[string]*FakePort
}

// NewFakeManager creates a FakeManager with no ports registered.
func NewFakeManager() *FakeManager {
	return &FakeManager{ports: make(map[string]*FakePort)}
}

// AddPort registers a FakePort under blockName.portName and returns it.
func (m *FakeManager) AddPort(blockName, portName string) *FakePort {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &FakePort{}
	m.ports[blockName+"."+portName] = p
	return p
}

// Port implements block.Manager.
func (m *FakeManager) Port(blockName, portName string) (block.Port, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.ports[blockName+"."+portName]
	if !ok {
		return nil, synerrors.WrapInvalid(synerrors.ErrUnknownPort, "FakeManager", "Port", blockName+"."+portName)
	}
	return p, nil
}
