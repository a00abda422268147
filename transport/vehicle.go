package transport

// vehiclePhase names where a single vehicle is in its round trip.
type vehiclePhase int

const (
	phaseLoading vehiclePhase = iota
	phaseToSink
	phaseUnloading
	phaseToSource
)

// vehicleState is the Vehicle strategy's runtime: a single carrier that
// loads at the source, travels to the sink, unloads, and returns. Partial
// loads travel; empty round-trips still consume travel time.
type vehicleState struct {
	phase     vehiclePhase
	cargo     uint32
	ticksLeft uint64
}

func newVehicleState() *vehicleState {
	return &vehicleState{phase: phaseLoading}
}

func (t *Transport) stepVehicle(ctx StepContext) {
	cfg := t.Config
	s := t.vehicle

	switch s.phase {
	case phaseLoading:
		if available := ctx.Source.Quantity(cfg.Item); available > 0 && s.cargo < cfg.Capacity {
			want := cfg.Capacity - s.cargo
			if want > available {
				want = available
			}
			ctx.Source.Remove(cfg.Item, want)
			s.cargo += want
		}
		s.phase = phaseToSink
		s.ticksLeft = cfg.TravelTime

	case phaseToSink:
		if s.ticksLeft > 0 {
			s.ticksLeft--
			return
		}
		s.phase = phaseUnloading

	case phaseUnloading:
		if s.cargo > 0 {
			room := ctx.Sink.Room(cfg.Item)
			deposit := s.cargo
			if deposit > room {
				deposit = room
			}
			if deposit > 0 {
				ctx.Sink.Add(cfg.Item, deposit)
				s.cargo -= deposit
			}
			if s.cargo > 0 {
				return // sink full; wait here rather than travel back with undelivered cargo
			}
		}
		s.phase = phaseToSource
		s.ticksLeft = cfg.TravelTime

	case phaseToSource:
		if s.ticksLeft > 0 {
			s.ticksLeft--
			return
		}
		s.phase = phaseLoading
	}
}

func (t *Transport) vehicleSnapshot() Snapshot {
	cfg := t.Config
	s := t.vehicle
	util := fixedZeroIfEmpty(uint64(s.cargo), uint64(cfg.Capacity))
	return Snapshot{Utilization: util, InTransit: uint64(s.cargo)}
}
