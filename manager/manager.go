// Package manager implements the engine orchestrator: module load, graph
// build and validation, block initialization, run, and shutdown.
package manager

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xavier-caroff/synapse/block"
	synerrors "github.com/xavier-caroff/synapse/errors"
	"github.com/xavier-caroff/synapse/metrics"
	"github.com/xavier-caroff/synapse/moduleloader"
	"github.com/xavier-caroff/synapse/port"
	"github.com/xavier-caroff/synapse/registry"
	"github.com/xavier-caroff/synapse/route"
	"golang.org/x/sync/errgroup"

	dispatcherpkg "github.com/xavier-caroff/synapse/dispatcher"
)

// defaultDispatcherName is the reserved name used for routes that omit an
// explicit dispatcher.
const defaultDispatcherName = "default"

// managedBlock pairs a block with the Manager's bookkeeping about it,
// modeled on the teacher's component.ManagedComponent.
type managedBlock struct {
	block      block.Block
	lifecycle  block.Lifecycle
	state      block.State
	configured []byte
	order      int
}

// Manager owns every block, port, route, and dispatcher in the graph for
// the duration of a run. It mutates that state only during Initialize;
// everything else touches only its own per-component locks, per the
// specification's mutation discipline.
type Manager struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	reg     *registry.Registry

	mu          sync.RWMutex
	blocks      map[string]*managedBlock
	blockOrder  []string
	ports       map[string]map[string]*port.Port
	routes      []*route.Route
	routeNames  map[string]bool
	dispatchers map[string]*dispatcherpkg.Dispatcher

	initialized bool
}

// New creates an empty Manager backed by reg (the caller has typically
// just populated reg via moduleloader.Load and/or a static Register call).
func New(reg *registry.Registry, logger *slog.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:      logger,
		metrics:     m,
		reg:         reg,
		blocks:      make(map[string]*managedBlock),
		ports:       make(map[string]map[string]*port.Port),
		routeNames:  make(map[string]bool),
		dispatchers: make(map[string]*dispatcherpkg.Dispatcher),
	}
}

// LoadModules runs the module loader against reg, then additional
// directories resolved from cfg.AdditionalPackageFolders.
func (m *Manager) LoadModules(extraDirs []string) error {
	return moduleloader.Load(m.reg, extraDirs)
}

// Initialize builds the graph from cfg and initializes every block, in the
// order documented in the specification: create blocks, create routes,
// initialize blocks. After Initialize returns success, no new blocks,
// ports, routes, or dispatchers are created (invariant 7).
func (m *Manager) Initialize(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return synerrors.WrapInvalid(synerrors.ErrAlreadyStarted, "Manager", "Initialize", "already initialized")
	}

	if err := m.createBlocks(cfg.Blocks); err != nil {
		return err
	}
	if err := m.createRoutes(cfg.Routes); err != nil {
		return err
	}
	if err := m.initializeBlocks(cfg.Blocks); err != nil {
		return err
	}

	m.initialized = true
	return nil
}

// Find returns the block registered under name, or false if none exists.
func (m *Manager) Find(name string) (block.Block, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mb, ok := m.blocks[name]
	if !ok {
		return nil, false
	}
	return mb.block, true
}

// Port returns the named output port owned by blockName, satisfying
// block.Manager for the narrow view handed to blocks during Initialize.
func (m *Manager) Port(blockName, portName string) (block.Port, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ports, ok := m.ports[blockName]
	if !ok {
		return nil, synerrors.WrapInvalid(synerrors.ErrUnknownPort, "Manager", "Port", blockName+"."+portName)
	}
	p, ok := ports[portName]
	if !ok {
		return nil, synerrors.WrapInvalid(synerrors.ErrUnknownPort, "Manager", "Port", blockName+"."+portName)
	}
	return p, nil
}

// Run computes the set of runnables (every dispatcher, plus every block
// exposing Runnable) and starts one goroutine per runnable via errgroup,
// replacing the specification's "thread per runnable + latch" with the
// idiomatic Go equivalent while preserving the same guarantee: Run
// observes Shutdown, and the Manager returns only once every worker has
// finished. The first runnable to return an error cancels the group's
// context, as does cancelling ctx; either cancellation triggers Shutdown.
// Shutdown itself cancels no context.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	m.mu.RLock()
	dispatchers := make([]*dispatcherpkg.Dispatcher, 0, len(m.dispatchers))
	for _, d := range m.dispatchers {
		dispatchers = append(dispatchers, d)
	}
	runnables := make(map[string]block.Runnable)
	for name, mb := range m.blocks {
		if r, ok := block.AsRunnable(mb.block); ok {
			runnables[name] = r
		}
	}
	m.mu.RUnlock()

	for _, d := range dispatchers {
		d := d
		g.Go(func() error {
			return d.Run()
		})
	}
	for name, r := range runnables {
		name, r := name, r
		m.setState(name, block.StateRunning)
		g.Go(func() error {
			err := r.Run()
			if err != nil {
				m.setState(name, block.StateFailed)
				m.logger.Error("runnable block exited with error", "block", name, "error", err)
				return err
			}
			m.setState(name, block.StateStopped)
			return nil
		})
	}

	go func() {
		<-gctx.Done()
		m.Shutdown()
	}()

	return g.Wait()
}

// Shutdown invokes Shutdown on every block, then RequestShutdown on every
// dispatcher. Safe to call from a signal-delivery context, and idempotent
// across repeated calls (each Shutdown method it calls must itself be
// idempotent).
func (m *Manager) Shutdown() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mb := range m.blocks {
		if mb.lifecycle != nil {
			mb.lifecycle.Shutdown()
		}
	}
	for _, d := range m.dispatchers {
		d.RequestShutdown()
	}
}

func (m *Manager) setState(name string, s block.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mb, ok := m.blocks[name]; ok {
		mb.state = s
		if m.metrics != nil {
			m.metrics.BlockState.WithLabelValues(name).Set(float64(s))
		}
	}
}
