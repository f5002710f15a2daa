// cmd/javaflow/commands/report.go
package commands

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"javaflow/internal/report"
	"javaflow/internal/store"
)

// ReportCommand prints the recorded run history for a method.
func ReportCommand(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	caseName := fs.String("case", "", "method name to report history for")
	dsn := fs.String("db", "", "store DSN (default: in-memory, so there is nothing to report)")
	limit := fs.Int("limit", 10, "maximum number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *caseName == "" {
		return errors.New("--case is required")
	}

	st, err := store.Open(*dsn)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer st.Close()

	runs, err := st.History(*caseName, *limit)
	if err != nil {
		return errors.Wrap(err, "load history")
	}
	if len(runs) == 0 {
		fmt.Printf("no recorded runs for %s\n", *caseName)
		return nil
	}
	fmt.Print(report.History(runs))
	return nil
}
