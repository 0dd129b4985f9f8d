package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fifostock/internal/renderer"
)

// movementsCmd shows the audit trail of an item.
type movementsCmd struct {
	limit int
}

func (*movementsCmd) Name() string     { return "movements" }
func (*movementsCmd) Synopsis() string { return "display recorded purchases and sales of an item" }
func (*movementsCmd) Usage() string {
	return `fifoctl movements [-n <count>] <item-code>

  Prints the latest audited movements of the item with the ledger
  each one left behind.
`
}

func (c *movementsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "number of movements to show")
}

func (c *movementsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one item code is required")
		return subcommands.ExitUsageError
	}
	itemCode := f.Arg(0)

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	records, err := a.Audit.ItemHistory(ctx, itemCode, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading movements: %v\n", err)
		return subcommands.ExitFailure
	}

	moves := make([]renderer.Movement, 0, len(records))
	for _, r := range records {
		moves = append(moves, renderer.Movement{At: r.CreatedAt, RequestID: r.RequestID, Entry: r.Entry})
	}
	printMarkdown(renderer.MovementsMarkdown(itemCode, moves))
	return subcommands.ExitSuccess
}
