package engine

import (
	"fmt"
	"strings"
)

// ResultString renders a Result as the fixed-priority outcome table of
// spec.md §6: one "outcome: N%" line per outcome with a non-zero
// probability, in outcomePriority order.
func (r Result) ResultString() string {
	var sb strings.Builder
	for _, o := range outcomePriority {
		if pct, ok := r.Probabilities[o]; ok && pct > 0 {
			fmt.Fprintf(&sb, "%s: %d%%\n", o, pct)
		}
	}
	return sb.String()
}
