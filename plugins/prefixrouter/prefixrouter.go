// Package prefixrouter implements the byte-prefix routing domain plug-in: a
// Fiber that inspects the leading bytes of each inbound message against a
// set of configured patterns and dispatches to the first port whose pattern
// matches, falling back to a configured fallback port (or dropping the
// message) when nothing matches.
package prefixrouter

import (
	"encoding/json"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/message"
	"github.com/xavier-caroff/synapse/plugins/escapeseq"
	"github.com/xavier-caroff/synapse/registry"
)

const className = "prefixrouter"

// RouteEntry binds a port name to the set of byte patterns that should
// dispatch to it. Patterns are given in source form and normalized the
// same way the Framer normalizes its start/end sequences.
type RouteEntry struct {
	Port     string   `json:"port"`
	Patterns []string `json:"patterns"`
}

// Config is the Prefix Router's per-block configuration document.
type Config struct {
	Routes   []RouteEntry `json:"routes"`
	Fallback string       `json:"fallback"`
}

// PrefixRouter dispatches inbound messages to one of several output ports
// based on a longest-unambiguous-match over their leading bytes.
type PrefixRouter struct {
	name string

	mu       sync.Mutex
	trie     *trie
	fallback string
	ports    map[string]block.Port
}

// New is a block.Factory for the prefixrouter class.
func New(name string) (block.Block, error) {
	return &PrefixRouter{name: name}, nil
}

// Register adds the prefixrouter class to reg.
func Register(reg *registry.Registry) error {
	reg.Register(block.Descriptor{ClassName: className, New: New})
	return nil
}

// Name implements block.Block.
func (r *PrefixRouter) Name() string { return r.name }

// DeclaredPorts implements block.Producer. Port order is: the fallback
// port first if configured, then each route's port in first-seen order,
// skipping routes whose pattern list is empty (they contribute nothing to
// the trie and declaring their port would be misleading). A route whose
// only patterns are empty strings is not skipped here; Initialize rejects
// it with ErrEmptyPattern.
func (r *PrefixRouter) DeclaredPorts(rawConfig []byte) ([]string, error) {
	cfg, err := parseConfig(rawConfig)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	add(cfg.Fallback)
	anyPattern := false
	for _, re := range cfg.Routes {
		if len(re.Patterns) == 0 {
			continue
		}
		anyPattern = true
		add(re.Port)
	}

	if !anyPattern {
		return nil, synerrors.WrapInvalid(synerrors.ErrNoRoute, "PrefixRouter", "DeclaredPorts", r.name)
	}
	return names, nil
}

// Initialize implements block.Lifecycle: builds the trie and resolves
// every declared port.
func (r *PrefixRouter) Initialize(rawConfig []byte, mgr block.Manager) error {
	cfg, err := parseConfig(rawConfig)
	if err != nil {
		return err
	}

	t := &trie{}
	for _, re := range cfg.Routes {
		for _, pattern := range re.Patterns {
			normalized := escapeseq.Normalize(pattern)
			if len(normalized) == 0 {
				return synerrors.WrapInvalid(synerrors.ErrEmptyPattern, "PrefixRouter", "Initialize", r.name+"."+re.Port)
			}
			if err := t.insert(normalized, re.Port); err != nil {
				return synerrors.WrapInvalid(err, "PrefixRouter", "Initialize", r.name+"."+re.Port)
			}
		}
	}

	declared, err := r.DeclaredPorts(rawConfig)
	if err != nil {
		return err
	}
	ports := make(map[string]block.Port, len(declared))
	for _, name := range declared {
		p, err := mgr.Port(r.name, name)
		if err != nil {
			return err
		}
		ports[name] = p
	}

	r.mu.Lock()
	r.trie = t
	r.fallback = cfg.Fallback
	r.ports = ports
	r.mu.Unlock()
	return nil
}

// Shutdown implements block.Lifecycle. The Prefix Router holds no
// resources that need releasing.
func (r *PrefixRouter) Shutdown() {}

// Consume implements block.Consumer: matches msg's leading bytes against
// the trie and dispatches to the winning port, the fallback port if no
// pattern matches, or drops the message if neither applies.
func (r *PrefixRouter) Consume(msg *message.Message) {
	r.mu.Lock()
	t := r.trie
	fallback := r.fallback
	ports := r.ports
	r.mu.Unlock()

	portName, ok := t.match(msg.Bytes())
	if !ok {
		portName = fallback
	}
	if portName == "" {
		return
	}

	p, ok := ports[portName]
	if !ok {
		return
	}
	p.Dispatch(msg)
}

func parseConfig(rawConfig []byte) (Config, error) {
	var cfg Config
	if len(rawConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return Config{}, synerrors.WrapInvalid(synerrors.ErrInvalidConfig, "PrefixRouter", "parseConfig", "")
	}
	return cfg, nil
}
