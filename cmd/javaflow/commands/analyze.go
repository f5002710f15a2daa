// cmd/javaflow/commands/analyze.go
package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"javaflow/internal/concrete"
	"javaflow/internal/decode"
	"javaflow/internal/domain"
	"javaflow/internal/engine"
	"javaflow/internal/live"
	"javaflow/internal/report"
	"javaflow/internal/store"
)

// AnalyzeCommand runs the fixpoint over every method in a case file and
// prints the outcome table, per SPEC_FULL.md §6.
func AnalyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	caseName := fs.String("case", "", "name of the test case to analyze")
	abs := fs.String("abs", "int", "which family --interval/--bricks refine: int or str")
	useInterval := fs.Bool("interval", false, "use the Interval domain instead of Sign")
	useBricks := fs.Bool("bricks", false, "use the Bricks domain instead of Prefix/Suffix")
	noWiden := fs.Bool("no-widen", false, "disable widening at loop heads (may not terminate)")
	maxIterations := fs.Int("max-iterations", 100000, "worklist iteration budget")
	fuzz := fs.Bool("fuzz", false, "cross-check the abstract result with a concrete coverage-guided fuzzer")
	fuzzBudget := fs.Int("fuzz-budget", 32, "mutation budget for --fuzz")
	allDomains := fs.Bool("all-domains", false, "run all four domain combinations concurrently")
	watch := fs.Bool("watch", false, "stream fixpoint progress over a local websocket")
	dsn := fs.String("db", "", "store DSN to record this run (default: in-memory, not persisted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *abs != "int" && *abs != "str" {
		return errors.Errorf("--abs must be int or str, got %q", *abs)
	}
	if *caseName == "" {
		return errors.New("--case is required")
	}

	src, err := loadCase(*caseName)
	if err != nil {
		return errors.Wrap(err, "load case")
	}

	var watcher *live.Server
	if *watch {
		watcher = live.NewServer("127.0.0.1:8765")
		watcher.Serve()
		defer watcher.Close()
		fmt.Println("watching fixpoint progress on ws://127.0.0.1:8765/events")
	}

	var st *store.Store
	if *dsn != "" {
		st, err = store.Open(*dsn)
		if err != nil {
			return errors.Wrap(err, "open store")
		}
		defer st.Close()
	}

	for _, method := range src.Methods() {
		fmt.Printf("[Method] %s:\n", method.Name)

		if *allDomains {
			if err := analyzeAllDomains(method, watcher); err != nil {
				return err
			}
			continue
		}

		cfg := engine.DefaultConfig()
		cfg.MaxIterations = *maxIterations
		if *abs == "int" && *useInterval {
			cfg.IntKind = domain.IntInterval
		}
		if *abs == "str" && *useBricks {
			cfg.StringKind = domain.StringBricks
		}
		cfg.DisableWiden = *noWiden
		if watcher != nil {
			cfg.OnUpdate = watcher.OnUpdate(method.Name)
		}

		start := time.Now()
		res, err := engine.NewAnalyzer(cfg).Analyze(method)
		duration := time.Since(start)
		if err != nil {
			return errors.Wrapf(err, "analyze %s", method.Name)
		}

		fmt.Print(report.OutcomeTable(outcomeProbs(res)))

		if *fuzz {
			runFuzzCrossCheck(method, *fuzzBudget)
		}

		if st != nil {
			run := store.AnalysisRun{
				ID:            uuid.NewString(),
				Method:        method.Name,
				IntDomain:     string(intDomainName(cfg.IntKind)),
				StringDomain:  string(stringDomainName(cfg.StringKind)),
				Probabilities: outcomeProbs(res),
				ErrorSet:      outcomeStrings(res.ErrorSet),
				Iterations:    res.Iterations,
				Joins:         res.Joins,
				Widens:        res.Widens,
				DurationMS:    duration.Milliseconds(),
				CreatedAt:     time.Now().UTC(),
			}
			if err := st.RecordRun(run); err != nil {
				return errors.Wrap(err, "record run")
			}
		}
	}
	return nil
}

// analyzeAllDomains runs the Sign/Interval x Prefix-Suffix/Bricks
// combinations concurrently, per SPEC_FULL.md §5, joining only to print
// all four result strings once every goroutine finishes.
func analyzeAllDomains(method decode.Method, watcher *live.Server) error {
	type combo struct {
		intKind domain.IntKind
		strKind domain.StringKind
	}
	combos := []combo{
		{domain.IntSign, domain.StringPrefixSuffix},
		{domain.IntSign, domain.StringBricks},
		{domain.IntInterval, domain.StringPrefixSuffix},
		{domain.IntInterval, domain.StringBricks},
	}
	results := make([]engine.Result, len(combos))

	var g errgroup.Group
	for i, c := range combos {
		i, c := i, c
		g.Go(func() error {
			cfg := engine.DefaultConfig()
			cfg.IntKind, cfg.StringKind = c.intKind, c.strKind
			if watcher != nil {
				cfg.OnUpdate = watcher.OnUpdate(method.Name)
			}
			res, err := engine.NewAnalyzer(cfg).Analyze(method)
			if err != nil {
				return errors.Wrapf(err, "analyze %s (%s/%s)", method.Name, intDomainName(c.intKind), stringDomainName(c.strKind))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range combos {
		fmt.Printf("  [%s / %s]\n", intDomainName(c.intKind), stringDomainName(c.strKind))
		fmt.Print(report.OutcomeTable(outcomeProbs(results[i])))
	}
	return nil
}

// runFuzzCrossCheck drives the concrete interpreter and coverage-guided
// fuzzer over the same method the abstract analyzer just ran over. It
// never feeds back into the abstract result; it's a cheap sanity check
// that the bytecode the analyzer reasons about is actually reachable the
// way the analyzer assumes, per spec.md §4.10.
func runFuzzCrossCheck(method decode.Method, budget int) {
	machine := concrete.NewStackMachine()
	seed := make([]int, method.ParamCount)
	fuzzer := concrete.NewCoverageFuzzer(machine, seed)

	interesting, visited, err := fuzzer.CoverageGuidedFuzz(method, budget)
	if err != nil {
		fmt.Printf("  [fuzz] %s: %v\n", method.Name, err)
		return
	}
	fmt.Printf("  [fuzz] %s: %d interesting input(s) (seed included), mutation budget %d, %d PC(s) covered\n",
		method.Name, len(interesting), budget, len(visited))
}

func loadCase(name string) (*decode.JSONSource, error) {
	path := filepath.Join("cases", name+".json")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open case file %s", path)
	}
	defer f.Close()
	return decode.NewJSONSource(f)
}

func outcomeProbs(res engine.Result) map[string]int {
	out := make(map[string]int, len(res.Probabilities))
	for o, pct := range res.Probabilities {
		out[string(o)] = pct
	}
	return out
}

func outcomeStrings(outcomes []engine.Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = string(o)
	}
	return out
}

func intDomainName(k domain.IntKind) string {
	if k == domain.IntInterval {
		return "interval"
	}
	return "sign"
}

func stringDomainName(k domain.StringKind) string {
	if k == domain.StringBricks {
		return "bricks"
	}
	return "prefixsuffix"
}
