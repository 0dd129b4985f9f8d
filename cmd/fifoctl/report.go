package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"fifostock/internal/core/types"
	"fifostock/internal/domain/reports"
	"fifostock/internal/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	start string
	end   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the FIFO ledger of an item" }
func (*reportCmd) Usage() string {
	return `fifoctl report [-start <YYYY-MM-DD>] [-end <YYYY-MM-DD>] <item-code>

  Replays purchases and sales of the item and prints every ledger row
  with the remaining lot composition.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "first business date of the report (inclusive)")
	f.StringVar(&c.end, "end", "", "last business date of the report (inclusive)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one item code is required")
		return subcommands.ExitUsageError
	}

	rng, err := c.dateRange()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	ledger, err := a.Reports.ItemLedger(ctx, f.Arg(0), rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LedgerMarkdown(ledger))
	return subcommands.ExitSuccess
}

func (c *reportCmd) dateRange() (reports.DateRange, error) {
	var rng reports.DateRange
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := types.ParseDate(s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	var err error
	if rng.From, err = parse(c.start); err != nil {
		return rng, err
	}
	if rng.To, err = parse(c.end); err != nil {
		return rng, err
	}
	return rng, rng.Validate()
}
