package report

import (
	"strings"
	"testing"
	"time"

	"javaflow/internal/store"
)

func TestOutcomeTableOrdersByPriorityAndIncludesZero(t *testing.T) {
	probs := map[string]int{"ok": 80, "divide-by-zero": 20, "error": 0}
	out := OutcomeTable(probs)
	wantOrder := outcomePriority
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(wantOrder) {
		t.Fatalf("OutcomeTable lines = %v, want one line per kind in %v", lines, wantOrder)
	}
	for i, w := range wantOrder {
		if !strings.HasPrefix(lines[i], w+";") {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], w+";")
		}
	}
	if !strings.Contains(out, "divide-by-zero;20%") {
		t.Errorf("OutcomeTable missing divide-by-zero line: %q", out)
	}
	if !strings.Contains(out, "ok;80%") {
		t.Errorf("OutcomeTable missing ok line: %q", out)
	}
	if !strings.Contains(out, "error;0%") {
		t.Errorf("OutcomeTable should still print a zero-probability outcome: %q", out)
	}
}

func TestHistoryRendersRuns(t *testing.T) {
	runs := []store.AnalysisRun{
		{
			ID:            "run-1",
			Method:        "divide",
			Probabilities: map[string]int{"ok": 100},
			Iterations:    1234,
			Joins:         5,
			Widens:        0,
			CreatedAt:     time.Now().Add(-time.Hour),
		},
	}
	out := History(runs)
	if !strings.Contains(out, "run-1") {
		t.Errorf("History output missing run ID: %q", out)
	}
	if !strings.Contains(out, "1,234") {
		t.Errorf("History output missing comma-separated iteration count: %q", out)
	}
	if !strings.Contains(out, "ok: 100%") {
		t.Errorf("History output missing probability line: %q", out)
	}
}
