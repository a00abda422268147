// Package id provides the opaque handle types addressing every long-lived
// entity in the simulation. Graph-resident entities (nodes, edges,
// junctions, item instances) are generation-indexed handles, so a freed
// slot's old handle never collides with whatever is allocated into that
// slot later. Registry-resident entities (item/building/recipe/property/
// modifier types) are plain integers assigned once by the immutable
// registry and never recycled.
//
// The generation+index handle shape mirrors the teacher's own file
// descriptor table (a stable small integer handed to callers, backed by
// a reusable slot), generalized with a generation counter for safe reuse
// detection.
package id

import "fmt"

// NodeId addresses a node (building) in the production graph.
type NodeId struct {
	Index      uint32
	Generation uint32
}

// EdgeId addresses an edge (transport link) in the production graph.
type EdgeId struct {
	Index      uint32
	Generation uint32
}

// JunctionId addresses a junction (splitter/merger/inserter).
type JunctionId struct {
	Index      uint32
	Generation uint32
}

// InstanceId addresses a specific stateful item instance.
type InstanceId struct {
	Index      uint32
	Generation uint32
}

func (n NodeId) String() string     { return fmt.Sprintf("Node(%d:%d)", n.Index, n.Generation) }
func (e EdgeId) String() string     { return fmt.Sprintf("Edge(%d:%d)", e.Index, e.Generation) }
func (j JunctionId) String() string { return fmt.Sprintf("Junction(%d:%d)", j.Index, j.Generation) }
func (i InstanceId) String() string { return fmt.Sprintf("Instance(%d:%d)", i.Index, i.Generation) }

// ItemTypeId identifies an item type in the registry.
type ItemTypeId uint32

// BuildingTypeId identifies a building template in the registry.
type BuildingTypeId uint32

// RecipeId identifies a recipe in the registry.
type RecipeId uint32

// PropertyId identifies a property on an item type. Ordered, so modifier
// and property iteration can be sorted for determinism.
type PropertyId uint16

// ModifierId identifies a modifier applied to a building. Ordered: modifier
// stacks are always evaluated in sorted ModifierId order.
type ModifierId uint32

// PendingNodeId is a monotonically allocated placeholder returned by a
// queued node mutation; it resolves to a real NodeId when the mutation
// batch applies.
type PendingNodeId uint64

// PendingEdgeId is the edge analogue of PendingNodeId.
type PendingEdgeId uint64
