package manager

import (
	"strings"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/port"
	"github.com/xavier-caroff/synapse/route"

	dispatcherpkg "github.com/xavier-caroff/synapse/dispatcher"
)

// createBlocks instantiates every configured block, validates its name,
// resolves its factory, and — if it is a Producer — creates its declared
// ports. Called with m.mu held.
func (m *Manager) createBlocks(cfgs []BlockConfig) error {
	for order, bc := range cfgs {
		if !validName(bc.Name) {
			return synerrors.WrapInvalid(synerrors.ErrInvalidName, "Manager", "createBlocks", bc.Name)
		}
		if _, exists := m.blocks[bc.Name]; exists {
			return synerrors.WrapInvalid(synerrors.ErrDuplicateName, "Manager", "createBlocks", bc.Name)
		}

		desc, err := m.reg.Find(bc.ClassName)
		if err != nil {
			return err
		}
		b, err := desc.New(bc.Name)
		if err != nil {
			return synerrors.WrapInvalid(err, "Manager", "createBlocks", "factory for "+bc.ClassName)
		}

		lifecycle, ok := block.AsLifecycle(b)
		if !ok {
			return synerrors.WrapFatal(synerrors.ErrInvalidConfig, "Manager", "createBlocks", bc.Name+" does not implement Lifecycle")
		}

		mb := &managedBlock{block: b, lifecycle: lifecycle, state: block.StateCreated, configured: bc.Config, order: order}
		m.blocks[bc.Name] = mb
		m.blockOrder = append(m.blockOrder, bc.Name)

		if producer, ok := block.AsProducer(b); ok {
			if err := m.createPorts(bc.Name, bc.Config, producer); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) createPorts(blockName string, config []byte, producer block.Producer) error {
	names, err := producer.DeclaredPorts(config)
	if err != nil {
		return synerrors.WrapInvalid(err, "Manager", "createPorts", blockName)
	}

	seen := make(map[string]bool, len(names))
	ports := make(map[string]*port.Port, len(names))
	for _, name := range names {
		if !validName(name) {
			return synerrors.WrapInvalid(synerrors.ErrInvalidName, "Manager", "createPorts", blockName+"."+name)
		}
		if seen[name] {
			return synerrors.WrapInvalid(synerrors.ErrDuplicateName, "Manager", "createPorts", blockName+"."+name)
		}
		seen[name] = true
		ports[name] = port.New(blockName, name)
	}
	m.ports[blockName] = ports
	return nil
}

// createRoutes resolves and creates every configured route, creating
// dispatchers on demand. Called with m.mu held.
func (m *Manager) createRoutes(cfgs []RouteConfig) error {
	for _, rc := range cfgs {
		sources, err := m.resolveSources(rc.Sources)
		if err != nil {
			return err
		}
		destinations, err := m.resolveDestinations(rc.Destinations)
		if err != nil {
			return err
		}

		if rc.Name != "" {
			if !validName(rc.Name) {
				return synerrors.WrapInvalid(synerrors.ErrInvalidName, "Manager", "createRoutes", rc.Name)
			}
			if m.routeNames[rc.Name] {
				return synerrors.WrapInvalid(synerrors.ErrDuplicateRoute, "Manager", "createRoutes", rc.Name)
			}
			m.routeNames[rc.Name] = true
		}

		dispatcherName := defaultDispatcherName
		if rc.Dispatcher != "" {
			if rc.Dispatcher == defaultDispatcherName {
				return synerrors.WrapInvalid(synerrors.ErrReservedName, "Manager", "createRoutes", rc.Dispatcher)
			}
			dispatcherName = rc.Dispatcher
		}
		d := m.getOrCreateDispatcher(dispatcherName)

		r := &route.Route{Name: rc.Name, Sources: sources, Destinations: destinations, Dispatcher: d}
		m.routes = append(m.routes, r)
		for _, src := range sources {
			src.Attach(r)
		}
	}
	return nil
}

func (m *Manager) resolveSources(specs []string) ([]*port.Port, error) {
	resolved := make([]*port.Port, 0, len(specs))
	for _, spec := range specs {
		blockName, portName, hasPort := strings.Cut(spec, ".")
		if blockName == "" {
			return nil, synerrors.WrapInvalid(synerrors.ErrInvalidName, "Manager", "resolveSources", spec)
		}

		ports, ok := m.ports[blockName]
		if !ok {
			if _, exists := m.blocks[blockName]; !exists {
				return nil, synerrors.WrapInvalid(synerrors.ErrUnknownBlock, "Manager", "resolveSources", blockName)
			}
			return nil, synerrors.WrapInvalid(synerrors.ErrUnknownPort, "Manager", "resolveSources", spec)
		}

		if !hasPort {
			if len(ports) != 1 {
				return nil, synerrors.WrapInvalid(synerrors.ErrAmbiguousPort, "Manager", "resolveSources", blockName)
			}
			for _, p := range ports {
				resolved = append(resolved, p)
			}
			continue
		}

		if portName == "" {
			return nil, synerrors.WrapInvalid(synerrors.ErrInvalidName, "Manager", "resolveSources", spec)
		}
		p, ok := ports[portName]
		if !ok {
			return nil, synerrors.WrapInvalid(synerrors.ErrUnknownPort, "Manager", "resolveSources", spec)
		}
		resolved = append(resolved, p)
	}
	return resolved, nil
}

func (m *Manager) resolveDestinations(names []string) ([]route.Consumer, error) {
	resolved := make([]route.Consumer, 0, len(names))
	for _, name := range names {
		mb, ok := m.blocks[name]
		if !ok {
			return nil, synerrors.WrapInvalid(synerrors.ErrUnknownBlock, "Manager", "resolveDestinations", name)
		}
		consumer, ok := block.AsConsumer(mb.block)
		if !ok {
			return nil, synerrors.WrapInvalid(synerrors.ErrNotAConsumer, "Manager", "resolveDestinations", name)
		}
		resolved = append(resolved, consumer)
	}
	return resolved, nil
}

func (m *Manager) getOrCreateDispatcher(name string) *dispatcherpkg.Dispatcher {
	if d, ok := m.dispatchers[name]; ok {
		return d
	}
	d := dispatcherpkg.New(name, m.logger, m.metrics)
	m.dispatchers[name] = d
	return d
}

// initializeBlocks calls Initialize on every block in declaration order,
// per invariant 8: no message is delivered before Initialize has returned
// for every block.
func (m *Manager) initializeBlocks(cfgs []BlockConfig) error {
	for _, bc := range cfgs {
		mb := m.blocks[bc.Name]
		if err := mb.lifecycle.Initialize(mb.configured, m); err != nil {
			mb.state = block.StateFailed
			return synerrors.WrapInvalid(err, "Manager", "initializeBlocks", bc.Name)
		}
		mb.state = block.StateInitialized
	}
	return nil
}
