// Package report renders analysis results and run history for the CLI,
// per SPEC_FULL.md §4.13.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"javaflow/internal/store"
)

var outcomePriority = []string{
	"divide-by-zero",
	"null-pointer-exception",
	"assertion-error",
	"index-out-of-bounds",
	"index-range-exception",
	"number-format-error",
	"error",
	"ok",
	"*",
}

// OutcomeTable renders spec.md §6's outcome output format: one line per
// outcome kind, `<kind>;<percent>%`, in the fixed priority order —
// including kinds that didn't occur at all, since a 0% line is still
// informative (it rules that outcome out, rather than just omitting it).
func OutcomeTable(probs map[string]int) string {
	var sb strings.Builder
	for _, o := range outcomePriority {
		fmt.Fprintf(&sb, "%s;%d%%\n", o, probs[o])
	}
	return sb.String()
}

// History renders a short table of past runs, newest first, using
// humanize for relative timestamps and thousands-separated counts.
func History(runs []store.AnalysisRun) string {
	var sb strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&sb, "%s  %s  %s  iterations=%s joins=%s widens=%s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(run.CreatedAt),
			humanize.Comma(int64(run.Iterations)), humanize.Comma(int64(run.Joins)), humanize.Comma(int64(run.Widens)))
		keys := make([]string, 0, len(run.Probabilities))
		for k := range run.Probabilities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "    %s: %d%%\n", k, run.Probabilities[k])
		}
	}
	return sb.String()
}
