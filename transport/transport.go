// Package transport implements the four per-edge strategies that move
// items from a source node's output inventory to a destination node's
// input inventory once per tick: Flow (rate-based continuous), Item
// (discrete belt), Batch (periodic bulk), and Vehicle (round-trip
// carrier). All strategies refuse to accept items when the sink has no
// space; refused items remain at the source.
package transport

import (
	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/inventory"
	"github.com/nova-forge/factorial-sim/serialize"
	"github.com/nova-forge/factorial-sim/sim"
)

// Kind selects which transport strategy an edge runs.
type Kind int

const (
	Flow Kind = iota
	Item
	Batch
	Vehicle
)

// Config is the immutable per-edge transport configuration. Every
// strategy transports a single designated item type along the edge,
// mirroring a single conveyor/pipe/route carrying one good.
type Config struct {
	Kind Kind
	Item id.ItemTypeId

	// Flow
	Rate           fixed.Fixed64
	BufferCapacity fixed.Fixed64
	Latency        uint64

	// Item (belt)
	SlotCount int
	Lanes     int
	Speed     uint64

	// Batch
	CycleTime uint64
	BatchSize uint32

	// Vehicle
	Capacity   uint32
	TravelTime uint64
}

// StepContext gathers the source/sink inventories a transport needs.
type StepContext struct {
	Source *inventory.Inventory
	Sink   *inventory.Inventory
}

// Snapshot is the transport-agnostic summary exposed for UI/diagnostics.
type Snapshot struct {
	Utilization fixed.Fixed64 // in [0,1]
	InTransit   uint64
}

// Transport is the mutable per-edge transport unit.
type Transport struct {
	Config Config

	flow    *flowState
	belt    *beltState
	batch   *batchState
	vehicle *vehicleState
}

// NewTransport creates a transport in its initial (empty) state.
func NewTransport(cfg Config) *Transport {
	t := &Transport{Config: cfg}
	switch cfg.Kind {
	case Flow:
		t.flow = newFlowState()
	case Item:
		t.belt = newBeltState(cfg)
	case Batch:
		t.batch = newBatchState()
	case Vehicle:
		t.vehicle = newVehicleState()
	}
	return t
}

// Step advances the transport by one tick.
func (t *Transport) Step(ctx StepContext) {
	switch t.Config.Kind {
	case Flow:
		t.stepFlow(ctx)
	case Item:
		t.stepBelt(ctx)
	case Batch:
		t.stepBatch(ctx)
	case Vehicle:
		t.stepVehicle(ctx)
	}
}

// HashState folds the transport's config and per-strategy runtime into a
// canonical state hash.
func (t *Transport) HashState(w sim.HashSink) {
	cfg := t.Config
	w.WriteUint64(uint64(cfg.Kind))
	w.WriteUint32(uint32(cfg.Item))
	w.WriteInt64(cfg.Rate.Bits())
	w.WriteInt64(cfg.BufferCapacity.Bits())
	w.WriteUint64(cfg.Latency)
	w.WriteUint64(uint64(cfg.SlotCount))
	w.WriteUint64(uint64(cfg.Lanes))
	w.WriteUint64(cfg.Speed)
	w.WriteUint64(cfg.CycleTime)
	w.WriteUint32(cfg.BatchSize)
	w.WriteUint32(cfg.Capacity)
	w.WriteUint64(cfg.TravelTime)

	switch cfg.Kind {
	case Flow:
		w.WriteInt64(t.flow.buffered.Bits())
		w.WriteUint64(uint64(len(t.flow.fifo)))
		for _, l := range t.flow.fifo {
			w.WriteInt64(l.amount.Bits())
			w.WriteUint64(l.ticksUntilArrive)
		}
	case Item:
		for _, lane := range t.belt.lanes {
			for _, occ := range lane {
				w.WriteUint64(boolToUint64(occ))
			}
		}
		w.WriteUint64(uint64(t.belt.nextLane))
	case Batch:
		w.WriteUint32(t.batch.accumulated)
		w.WriteUint64(t.batch.ticksInCycle)
	case Vehicle:
		w.WriteUint64(uint64(t.vehicle.phase))
		w.WriteUint32(t.vehicle.cargo)
		w.WriteUint64(t.vehicle.ticksLeft)
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Encode writes the transport's config and per-strategy runtime, so Decode
// reconstructs a transport that continues identically from where Encode
// observed it.
func (t *Transport) Encode(w *serialize.Writer) {
	cfg := t.Config
	w.Uint32(uint32(cfg.Kind))
	w.Uint32(uint32(cfg.Item))
	w.Int64(cfg.Rate.Bits())
	w.Int64(cfg.BufferCapacity.Bits())
	w.Uint64(cfg.Latency)
	w.Uint64(uint64(cfg.SlotCount))
	w.Uint64(uint64(cfg.Lanes))
	w.Uint64(cfg.Speed)
	w.Uint64(cfg.CycleTime)
	w.Uint32(cfg.BatchSize)
	w.Uint32(cfg.Capacity)
	w.Uint64(cfg.TravelTime)

	switch cfg.Kind {
	case Flow:
		w.Int64(t.flow.buffered.Bits())
		w.Uint32(uint32(len(t.flow.fifo)))
		for _, l := range t.flow.fifo {
			w.Int64(l.amount.Bits())
			w.Uint64(l.ticksUntilArrive)
		}
	case Item:
		w.Uint32(uint32(len(t.belt.lanes)))
		for _, lane := range t.belt.lanes {
			w.Uint32(uint32(len(lane)))
			for _, occ := range lane {
				w.Bool(occ)
			}
		}
		w.Uint64(uint64(t.belt.nextLane))
	case Batch:
		w.Uint32(t.batch.accumulated)
		w.Uint64(t.batch.ticksInCycle)
	case Vehicle:
		w.Uint64(uint64(t.vehicle.phase))
		w.Uint32(t.vehicle.cargo)
		w.Uint64(t.vehicle.ticksLeft)
	}
}

// Decode rebuilds a transport from bytes written by Encode.
func Decode(r *serialize.Reader) (*Transport, error) {
	var cfg Config

	kind, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	cfg.Kind = Kind(kind)

	item, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	cfg.Item = id.ItemTypeId(item)

	rate, err := r.Int64()
	if err != nil {
		return nil, err
	}
	cfg.Rate = fixed.Fixed64FromBits(rate)

	bufferCapacity, err := r.Int64()
	if err != nil {
		return nil, err
	}
	cfg.BufferCapacity = fixed.Fixed64FromBits(bufferCapacity)

	latency, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.Latency = latency

	slotCount, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.SlotCount = int(slotCount)

	lanes, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.Lanes = int(lanes)

	speed, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.Speed = speed

	cycleTime, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.CycleTime = cycleTime

	batchSize, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	cfg.BatchSize = batchSize

	capacity, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	cfg.Capacity = capacity

	travelTime, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	cfg.TravelTime = travelTime

	t := &Transport{Config: cfg}

	switch cfg.Kind {
	case Flow:
		buffered, err := r.Int64()
		if err != nil {
			return nil, err
		}
		fifoLen, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		fifo := make([]lot, fifoLen)
		for i := range fifo {
			amount, err := r.Int64()
			if err != nil {
				return nil, err
			}
			ticks, err := r.Uint64()
			if err != nil {
				return nil, err
			}
			fifo[i] = lot{amount: fixed.Fixed64FromBits(amount), ticksUntilArrive: ticks}
		}
		t.flow = &flowState{buffered: fixed.Fixed64FromBits(buffered), fifo: fifo}
	case Item:
		laneCount, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		lanes := make([][]bool, laneCount)
		for i := range lanes {
			slotCount, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			lane := make([]bool, slotCount)
			for j := range lane {
				occ, err := r.Bool()
				if err != nil {
					return nil, err
				}
				lane[j] = occ
			}
			lanes[i] = lane
		}
		nextLane, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		t.belt = &beltState{lanes: lanes, nextLane: int(nextLane)}
	case Batch:
		accumulated, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		ticksInCycle, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		t.batch = &batchState{accumulated: accumulated, ticksInCycle: ticksInCycle}
	case Vehicle:
		phase, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		cargo, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		ticksLeft, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		t.vehicle = &vehicleState{phase: vehiclePhase(phase), cargo: cargo, ticksLeft: ticksLeft}
	}

	return t, nil
}

// Snapshot reports the current utilization and in-transit count.
func (t *Transport) Snapshot() Snapshot {
	switch t.Config.Kind {
	case Flow:
		return t.flowSnapshot()
	case Item:
		return t.beltSnapshot()
	case Batch:
		return t.batchSnapshot()
	default:
		return t.vehicleSnapshot()
	}
}
