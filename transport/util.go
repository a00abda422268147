package transport

import "github.com/nova-forge/factorial-sim/fixed"

// fixedZeroIfEmpty computes occupied/total as a Q32.32 ratio, or returns
// zero when total is zero to avoid a division by zero.
func fixedZeroIfEmpty(occupied, total uint64) fixed.Fixed64 {
	if total == 0 {
		return fixed.Zero64
	}
	return fixed.FromInt64(int64(occupied)).Div(fixed.FromInt64(int64(total)))
}
