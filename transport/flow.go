package transport

import "github.com/nova-forge/factorial-sim/fixed"

// lot is one tick's pulled amount, held for the edge's latency before
// depositing at the sink.
type lot struct {
	amount           fixed.Fixed64
	ticksUntilArrive uint64
}

// flowState is the Flow strategy's runtime: a buffered Q32.32 amount plus
// a FIFO of in-flight lots.
type flowState struct {
	buffered fixed.Fixed64
	fifo     []lot
}

func newFlowState() *flowState {
	return &flowState{}
}

func (t *Transport) stepFlow(ctx StepContext) {
	cfg := t.Config
	s := t.flow

	// Age every in-flight lot by one tick.
	for i := range s.fifo {
		if s.fifo[i].ticksUntilArrive > 0 {
			s.fifo[i].ticksUntilArrive--
		}
	}

	// Deposit any lot that has arrived, oldest first, preserving FIFO
	// order; a lot that can't fully deposit (sink full) stays at the
	// front of the queue and is retried next tick.
	for len(s.fifo) > 0 && s.fifo[0].ticksUntilArrive == 0 {
		front := &s.fifo[0]
		amountUnits := front.amount.TruncToInt()
		if amountUnits <= 0 {
			s.fifo = s.fifo[1:]
			continue
		}
		room := ctx.Sink.Room(cfg.Item)
		place := uint32(amountUnits)
		if uint64(place) > uint64(room) {
			place = room
		}
		if place > 0 {
			ctx.Sink.Add(cfg.Item, place)
			front.amount = front.amount.Sub(fixed.FromInt64(int64(place)))
			s.buffered = s.buffered.Sub(fixed.FromInt64(int64(place)))
		}
		if front.amount.Cmp(fixed.Zero64) <= 0 {
			s.fifo = s.fifo[1:]
			continue
		}
		break // sink is out of room; stop depositing this tick
	}

	// Pull up to rate from the source, subject to buffer capacity and
	// source availability.
	room := cfg.BufferCapacity.Sub(s.buffered)
	if room.Cmp(fixed.Zero64) <= 0 {
		return
	}
	want := cfg.Rate
	if want.Cmp(room) > 0 {
		want = room
	}
	wantUnits := want.TruncToInt()
	if wantUnits <= 0 {
		return
	}
	available := ctx.Source.Quantity(cfg.Item)
	pullUnits := uint32(wantUnits)
	if pullUnits > available {
		pullUnits = available
	}
	if pullUnits == 0 {
		return
	}
	ctx.Source.Remove(cfg.Item, pullUnits)
	amount := fixed.FromInt64(int64(pullUnits))
	s.buffered = s.buffered.Add(amount)
	s.fifo = append(s.fifo, lot{amount: amount, ticksUntilArrive: cfg.Latency})
}

func (t *Transport) flowSnapshot() Snapshot {
	cfg := t.Config
	s := t.flow
	util := fixed.Zero64
	if cfg.BufferCapacity.Cmp(fixed.Zero64) > 0 {
		util = s.buffered.Div(cfg.BufferCapacity).Clamp01()
	}
	inTransit := uint64(0)
	for _, l := range s.fifo {
		if units := l.amount.TruncToInt(); units > 0 {
			inTransit += uint64(units)
		}
	}
	return Snapshot{Utilization: util, InTransit: inTransit}
}
