// Package engine orchestrates the six-phase per-tick pipeline: drain
// commands and graph mutations, run transports, run processors in
// topological order, run registered modules, flush events, then advance
// the tick counter and state hash. It is the single owner of all mutable
// simulation state; the only externally writable surface is the command
// queue (see command.Queue).
package engine

import (
	"github.com/joeycumines/go-utilpkg/logiface"
	"github.com/joeycumines/go-utilpkg/logiface/stumpy"

	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/event"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/itemprops"
	"github.com/nova-forge/factorial-sim/module"
	"github.com/nova-forge/factorial-sim/processor"
	"github.com/nova-forge/factorial-sim/registry"
	"github.com/nova-forge/factorial-sim/rng"
	"github.com/nova-forge/factorial-sim/sim"
	"github.com/nova-forge/factorial-sim/transport"
)

// DefaultInputSlots, DefaultOutputSlots, and DefaultSlotCapacity size the
// inventories an Engine assigns to a node the first tick it appears, until
// a SetInputInventory/SetOutputInventory command installs something else.
const (
	DefaultInputSlots   = 4
	DefaultOutputSlots  = 4
	DefaultSlotCapacity = 1000
)

// Engine is a single, self-contained simulation instance. It holds no
// process-global state; hosts may run any number of independent engines.
type Engine struct {
	registry *registry.Registry
	graph    *graph.Graph
	rng      *rng.Rng

	processors map[id.NodeId]*processor.Processor
	inputs     map[id.NodeId]*inventory.Inventory
	outputs    map[id.NodeId]*inventory.Inventory
	modifiers  map[id.NodeId][]processor.Modifier

	transports map[id.EdgeId]*transport.Transport

	// instanceAlloc mints InstanceId handles for stateful item instances a
	// Source stamps with InitialProperties; itemProps is the bounded cache
	// those handles' properties are stored in. Neither is part of the
	// canonical state hash or Serialize/Deserialize: a restored engine
	// starts with an empty property cache, since this is diagnostic,
	// queryable state rather than something downstream processing depends
	// on (fungible inventories never carry instance ids).
	instanceAlloc *id.Allocator
	itemProps     *itemprops.Store

	events  *event.Bus
	queue   *command.Queue
	modules *module.Registry

	driver *sim.Driver

	tick     uint64
	lastHash uint64

	logger    *logiface.Logger[*stumpy.Event]
	profiling bool
	profile   TickProfile
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSeed seeds the deterministic PRNG (default seed 0).
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rng.New(seed) }
}

// WithStrategy configures the Advance(dt) strategy (default: TickStrategy,
// one Step per Advance call).
func WithStrategy(cfg sim.Config) Option {
	return func(e *Engine) { e.driver = sim.NewDriver(cfg) }
}

// WithCommandHistory bounds the command queue's retained replay/audit
// history (default 0, disabled).
func WithCommandHistory(cap int) Option {
	return func(e *Engine) { e.queue = command.NewQueue(cap) }
}

// WithLogger attaches a structured diagnostic logger. Default is nil (no
// logging, no allocation on the hot path); when set, NodeStalled,
// NodeUnstalled, and CommandRejected events are also logged at debug
// level as they are emitted.
func WithLogger(l *logiface.Logger[*stumpy.Event]) Option {
	return func(e *Engine) { e.logger = l }
}

// WithProfiling enables per-phase tick timing, retrievable via Profile()
// after each Step. Default is disabled (zero overhead).
func WithProfiling(enabled bool) Option {
	return func(e *Engine) { e.profiling = enabled }
}

// New creates an Engine bound to the given immutable registry, with an
// empty graph and no nodes.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:      reg,
		graph:         graph.New(),
		rng:           rng.New(0),
		processors:    make(map[id.NodeId]*processor.Processor),
		inputs:        make(map[id.NodeId]*inventory.Inventory),
		outputs:       make(map[id.NodeId]*inventory.Inventory),
		modifiers:     make(map[id.NodeId][]processor.Modifier),
		transports:    make(map[id.EdgeId]*transport.Transport),
		instanceAlloc: id.NewAllocator(),
		itemProps:     itemprops.New(itemprops.DefaultConfig()),
		events:        event.NewBus(),
		queue:         command.NewQueue(0),
		modules:       module.NewRegistry(),
		driver:        sim.NewDriver(sim.Config{Strategy: sim.TickStrategy}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph exposes the production graph for direct, pre-tick queuing
// (queue_add_node/queue_connect/... from spec.md's Graph API) outside the
// command-queue path.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Registry returns the immutable item/recipe/building catalog.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Commands returns the command queue external actors submit into.
func (e *Engine) Commands() *command.Queue { return e.queue }

// Events returns the event bus passive listeners subscribe to.
func (e *Engine) Events() *event.Bus { return e.events }

// Modules returns the module registry.
func (e *Engine) Modules() *module.Registry { return e.modules }

// ItemProperties returns the bounded cache of per-instance properties
// stamped by Source processors configured with InitialProperties.
func (e *Engine) ItemProperties() *itemprops.Store { return e.itemProps }

// Tick returns the current tick counter.
func (e *Engine) Tick() uint64 { return e.tick }

// LastHash returns the state hash computed at the end of the most
// recently completed tick.
func (e *Engine) LastHash() uint64 { return e.lastHash }

// RegisterModule appends a module to run during phase 4 of every tick,
// in registration order.
func (e *Engine) RegisterModule(m module.Module) { e.modules.Register(m) }

func (e *Engine) processorLookup(n id.NodeId) (*processor.Processor, bool) {
	p, ok := e.processors[n]
	return p, ok
}

func (e *Engine) inputLookup(n id.NodeId) (*inventory.Inventory, bool) {
	inv, ok := e.inputs[n]
	return inv, ok
}

func (e *Engine) outputLookup(n id.NodeId) (*inventory.Inventory, bool) {
	inv, ok := e.outputs[n]
	return inv, ok
}

// moduleContext builds the Context a module's OnTick receives this tick.
func (e *Engine) moduleContext() module.Context {
	return module.Context{
		Graph:      e.graph,
		Processors: e.processorLookup,
		Inputs:     e.inputLookup,
		Outputs:    e.outputLookup,
		Events:     e.events,
		Tick:       e.tick,
		Queue:      e.queue,
	}
}
