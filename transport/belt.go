package transport

// beltState is the Item (belt) strategy's runtime: slot_count × lanes
// discrete slots, arranged so index 0 is the head (next to unload) and
// slotCount-1 is the tail (next to load). Lane assignment on load is
// deterministic round-robin.
type beltState struct {
	lanes    [][]bool
	nextLane int
}

func newBeltState(cfg Config) *beltState {
	lanes := make([][]bool, cfg.Lanes)
	for i := range lanes {
		lanes[i] = make([]bool, cfg.SlotCount)
	}
	return &beltState{lanes: lanes}
}

func (t *Transport) stepBelt(ctx StepContext) {
	cfg := t.Config
	s := t.belt
	speed := int(cfg.Speed)
	if speed < 1 {
		speed = 1
	}

	for lane := range s.lanes {
		slots := s.lanes[lane]

		// Unload the head if occupied and the sink has room; otherwise it
		// blocks the lane (backpressure) for this tick.
		headBlocked := false
		if slots[0] {
			if ctx.Sink.Room(cfg.Item) > 0 {
				ctx.Sink.Add(cfg.Item, 1)
				slots[0] = false
			} else {
				headBlocked = true
			}
		}

		// Advance occupied slots toward the head by speed positions,
		// without overtaking: process from head to tail so an earlier
		// (closer-to-head) slot's new position is already settled before
		// a later slot is considered.
		advance := speed
		if headBlocked {
			advance = 0 // nothing can move into an occupied, blocked head
		}
		if advance > 0 {
			newSlots := make([]bool, len(slots))
			occupiedAhead := 0 // highest filled position in newSlots so far
			for pos := 0; pos < len(slots); pos++ {
				if !slots[pos] {
					continue
				}
				target := pos - advance
				if target < occupiedAhead {
					target = occupiedAhead
				}
				if target < 0 {
					target = 0
				}
				newSlots[target] = true
				occupiedAhead = target + 1
			}
			slots = newSlots
			s.lanes[lane] = slots
		}
	}

	// Tail loading: round-robin starting from nextLane so repeated loads
	// distribute evenly and deterministically.
	if len(s.lanes) > 0 {
		tail := cfg.SlotCount - 1
		for i := 0; i < len(s.lanes); i++ {
			lane := (s.nextLane + i) % len(s.lanes)
			if s.lanes[lane][tail] {
				continue
			}
			if ctx.Source.Quantity(cfg.Item) == 0 {
				break
			}
			ctx.Source.Remove(cfg.Item, 1)
			s.lanes[lane][tail] = true
			s.nextLane = (lane + 1) % len(s.lanes)
			break
		}
	}
}

func (t *Transport) beltSnapshot() Snapshot {
	s := t.belt
	var occupied, total uint64
	for _, lane := range s.lanes {
		for _, slot := range lane {
			total++
			if slot {
				occupied++
			}
		}
	}
	util := fixedZeroIfEmpty(occupied, total)
	return Snapshot{Utilization: util, InTransit: occupied}
}
