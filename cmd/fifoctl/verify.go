package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fifostock/internal/renderer"
)

// verifyCmd checks cached ledgers against live lots.
type verifyCmd struct {
	item string
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "check item ledgers against their lots" }
func (*verifyCmd) Usage() string {
	return `fifoctl verify [-item <code>]

  Compares each item's stock and balance with the sum of its live lots.
  Exits with status 1 when any fault is found.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "check a single item")
}

func (c *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.item != "" {
		if err := a.Checker.CheckItem(ctx, c.item); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: ok\n", c.item)
		return subcommands.ExitSuccess
	}

	report, err := a.Checker.CheckAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking ledgers: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.CheckMarkdown(report))
	if len(report.Faults) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
