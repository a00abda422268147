package transport

// batchState is the Batch strategy's runtime: items accumulate at the
// source for cycle_time ticks, then deposit atomically at the sink.
type batchState struct {
	accumulated  uint32
	ticksInCycle uint64
}

func newBatchState() *batchState {
	return &batchState{}
}

func (t *Transport) stepBatch(ctx StepContext) {
	cfg := t.Config
	s := t.batch

	if s.accumulated < cfg.BatchSize {
		if available := ctx.Source.Quantity(cfg.Item); available > 0 {
			want := cfg.BatchSize - s.accumulated
			if want > available {
				want = available
			}
			ctx.Source.Remove(cfg.Item, want)
			s.accumulated += want
		}
	}

	s.ticksInCycle++
	if s.ticksInCycle < cfg.CycleTime {
		return
	}
	s.ticksInCycle = 0

	if s.accumulated == 0 {
		return
	}
	room := ctx.Sink.Room(cfg.Item)
	deposit := s.accumulated
	if deposit > room {
		deposit = room
	}
	if deposit > 0 {
		ctx.Sink.Add(cfg.Item, deposit)
		s.accumulated -= deposit
	}
}

func (t *Transport) batchSnapshot() Snapshot {
	cfg := t.Config
	s := t.batch
	util := fixedZeroIfEmpty(uint64(s.accumulated), uint64(cfg.BatchSize))
	return Snapshot{Utilization: util, InTransit: uint64(s.accumulated)}
}
