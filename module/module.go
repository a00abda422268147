// Package module defines the narrow capability interface optional engine
// subsystems (power balancing, fluid networks, logic networks, tech
// trees, spatial indexing, ...) implement to hook into the tick pipeline.
// Modules run in registration order during phase 4 of the tick.
package module

import (
	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/event"
	"github.com/nova-forge/factorial-sim/graph"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/processor"
)

// Context is what a module's OnTick receives: read-only graph structure,
// mutable access to per-node processors and inventories, the event bus to
// emit into, and the current tick number.
type Context struct {
	Graph *graph.Graph

	Processors func(n id.NodeId) (*processor.Processor, bool)
	Inputs     func(n id.NodeId) (*inventory.Inventory, bool)
	Outputs    func(n id.NodeId) (*inventory.Inventory, bool)

	Events *event.Bus
	Tick   uint64
	Queue  *command.Queue
}

// Module is the capability interface an optional subsystem implements.
// Type-safe downcasting (ModuleByType) is the only reflective surface in
// the engine, used so hosts can fetch a specific concrete module back out
// of the engine's ordered module list.
type Module interface {
	Name() string
	OnTick(ctx Context)
	SerializeState() ([]byte, error)
	LoadState([]byte) error
}

// Registry is the engine's ordered list of registered modules.
type Registry struct {
	modules []Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a module, to run after every previously registered
// module during phase 4 of each tick.
func (r *Registry) Register(m Module) {
	r.modules = append(r.modules, m)
}

// OnTick runs every registered module's OnTick, in registration order.
func (r *Registry) OnTick(ctx Context) {
	for _, m := range r.modules {
		m.OnTick(ctx)
	}
}

// All returns every registered module, in registration order.
func (r *Registry) All() []Module {
	return append([]Module(nil), r.modules...)
}

// ModuleByType performs a type-safe downcast lookup over the registry,
// returning the first registered module of concrete type T. This is the
// engine's only reflective surface, replacing the as_any/as_any_mut
// downcast pattern a non-generic host language would need.
func ModuleByType[T Module](r *Registry) (T, bool) {
	for _, m := range r.modules {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
