// Package validation provides multiplayer-debugging tools for comparing
// two engine states and for validating that a simulation run is
// deterministic: a lockstep peer that has desynced needs to find exactly
// which node or subsystem disagrees, and a CI job needs to confirm a
// fresh run of the same snapshot never diverges from a prior one.
package validation

import (
	"fmt"

	"github.com/nova-forge/factorial-sim/engine"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/registry"
)

// NodeDiffKind names how one node's state differs between two engines.
type NodeDiffKind int

const (
	OnlyInA NodeDiffKind = iota
	OnlyInB
	NodeStateMismatch
)

// NodeDiff describes one node-level disagreement.
type NodeDiff struct {
	Kind        NodeDiffKind
	Node        id.NodeId
	Description string // populated for NodeStateMismatch
}

// EdgeDiffKind names how one edge differs between two engines.
type EdgeDiffKind int

const (
	EdgeOnlyInA EdgeDiffKind = iota
	EdgeOnlyInB
)

// EdgeDiff describes one edge-level disagreement.
type EdgeDiff struct {
	Kind EdgeDiffKind
	Edge id.EdgeId
}

// SubsystemDiff reports per-subsystem hash agreement between two engines.
type SubsystemDiff struct {
	GraphMatches     bool
	ProcessorsMatch  bool
	InventoriesMatch bool
	TransportsMatch  bool
	SimStateMatches  bool
}

// allMatch reports whether every subsystem agreed.
func (d SubsystemDiff) allMatch() bool {
	return d.GraphMatches && d.ProcessorsMatch && d.InventoriesMatch &&
		d.TransportsMatch && d.SimStateMatches
}

// StateDiff is the full comparison result between two engines.
type StateDiff struct {
	IsIdentical bool
	Subsystems  SubsystemDiff
	NodeDiffs   []NodeDiff
	EdgeDiffs   []EdgeDiff
}

// QuickCompare compares two engines' subsystem hashes only — cheap, and
// enough to confirm agreement or localize a desync to one subsystem
// without walking every node/edge.
func QuickCompare(a, b *engine.Engine) SubsystemDiff {
	ha := a.Subsystems()
	hb := b.Subsystems()
	return SubsystemDiff{
		GraphMatches:     ha.Graph == hb.Graph,
		ProcessorsMatch:  ha.Processors == hb.Processors,
		InventoriesMatch: ha.Inventories == hb.Inventories,
		TransportsMatch:  ha.Transports == hb.Transports,
		SimStateMatches:  ha.Sim == hb.Sim,
	}
}

// Diff computes a detailed node/edge-level diff between two engines, in
// addition to the subsystem-level QuickCompare.
func Diff(a, b *engine.Engine) StateDiff {
	subsystems := QuickCompare(a, b)

	var nodeDiffs []NodeDiff
	for _, snapA := range a.SnapshotAllNodes() {
		snapB, ok := b.SnapshotNode(snapA.Node)
		if !ok {
			nodeDiffs = append(nodeDiffs, NodeDiff{Kind: OnlyInA, Node: snapA.Node})
			continue
		}
		if desc := describeMismatch(snapA, snapB); desc != "" {
			nodeDiffs = append(nodeDiffs, NodeDiff{Kind: NodeStateMismatch, Node: snapA.Node, Description: desc})
		}
	}
	for _, snapB := range b.SnapshotAllNodes() {
		if !a.Graph().HasNode(snapB.Node) {
			nodeDiffs = append(nodeDiffs, NodeDiff{Kind: OnlyInB, Node: snapB.Node})
		}
	}

	var edgeDiffs []EdgeDiff
	for _, e := range a.Graph().Edges() {
		if !b.Graph().HasEdge(e) {
			edgeDiffs = append(edgeDiffs, EdgeDiff{Kind: EdgeOnlyInA, Edge: e})
		}
	}
	for _, e := range b.Graph().Edges() {
		if !a.Graph().HasEdge(e) {
			edgeDiffs = append(edgeDiffs, EdgeDiff{Kind: EdgeOnlyInB, Edge: e})
		}
	}

	return StateDiff{
		IsIdentical: len(nodeDiffs) == 0 && len(edgeDiffs) == 0 && subsystems.allMatch(),
		Subsystems:  subsystems,
		NodeDiffs:   nodeDiffs,
		EdgeDiffs:   edgeDiffs,
	}
}

func describeMismatch(a, b engine.NodeSnapshot) string {
	var mismatches []string
	if a.ProcessorState != b.ProcessorState {
		mismatches = append(mismatches, "processor_state")
	}
	if a.InputTotal != b.InputTotal {
		mismatches = append(mismatches, "input_inventory")
	}
	if a.OutputTotal != b.OutputTotal {
		mismatches = append(mismatches, "output_inventory")
	}
	if len(mismatches) == 0 {
		return ""
	}
	desc := mismatches[0]
	for _, m := range mismatches[1:] {
		desc += ", " + m
	}
	return desc
}

// DeterminismResult reports the outcome of replaying the same snapshot
// twice and comparing hashes tick by tick.
type DeterminismResult struct {
	IsDeterministic bool
	DivergenceTick  uint64
	Diverged        bool
	HashLog         []HashLogEntry
}

// HashLogEntry pairs one tick with both runs' state hashes.
type HashLogEntry struct {
	Tick  uint64
	HashA uint64
	HashB uint64
}

// CheckDeterminism deserializes snapshotData into two independent engines
// (both built against reg) and steps both ticks times, comparing hashes
// after every step. The first tick the hashes disagree is reported as the
// divergence point; the run is not stopped early, so the full log is
// always available for inspection.
func CheckDeterminism(reg *registry.Registry, snapshotData []byte, ticks uint64) (DeterminismResult, error) {
	engineA := engine.New(reg)
	if err := engineA.Deserialize(snapshotData); err != nil {
		return DeterminismResult{}, fmt.Errorf("deserializing run A: %w", err)
	}
	engineB := engine.New(reg)
	if err := engineB.Deserialize(snapshotData); err != nil {
		return DeterminismResult{}, fmt.Errorf("deserializing run B: %w", err)
	}

	result := DeterminismResult{IsDeterministic: true}
	for i := uint64(0); i < ticks; i++ {
		engineA.Step()
		engineB.Step()

		hashA := engineA.LastHash()
		hashB := engineB.LastHash()
		tick := engineA.Tick()

		result.HashLog = append(result.HashLog, HashLogEntry{Tick: tick, HashA: hashA, HashB: hashB})

		if hashA != hashB && !result.Diverged {
			result.Diverged = true
			result.IsDeterministic = false
			result.DivergenceTick = tick
		}
	}
	return result, nil
}
