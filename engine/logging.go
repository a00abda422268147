package engine

import (
	"github.com/nova-forge/factorial-sim/command"
	"github.com/nova-forge/factorial-sim/id"
	"github.com/nova-forge/factorial-sim/processor"
)

// logStall and logUnstalled emit structured debug-level diagnostics when a
// logger is attached (WithLogger). Unlike events, which are part of the
// hashed-reachable simulation contract, these log lines are pure
// observability and never influence engine state.
func (e *Engine) logStall(n id.NodeId, s processor.Stall) {
	if e.logger == nil {
		return
	}
	e.logger.Debug().
		Uint64(`node`, uint64(n.Index)).
		Int(`reason`, int(s.Reason)).
		Uint64(`item`, uint64(s.Item)).
		Log(`node stalled`)
}

func (e *Engine) logUnstalled(n id.NodeId) {
	if e.logger == nil {
		return
	}
	e.logger.Debug().
		Uint64(`node`, uint64(n.Index)).
		Log(`node unstalled`)
}

func (e *Engine) logRejected(cmd command.Command) {
	if e.logger == nil {
		return
	}
	e.logger.Debug().
		Int(`kind`, int(cmd.Kind)).
		Uint64(`node`, uint64(cmd.Node.Index)).
		Log(`command rejected`)
}
