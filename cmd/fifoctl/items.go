package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fifostock/internal/domain"
	"fifostock/internal/renderer"
)

// itemsCmd holds the flags for the 'items' subcommand.
type itemsCmd struct {
	search string
	limit  int
	offset int
}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "list items with their stock and balance" }
func (*itemsCmd) Usage() string {
	return `fifoctl items [-q <search>] [-limit <n>] [-offset <n>]

  Lists items ordered by code with the cached stock and balance.
`
}

func (c *itemsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "q", "", "match code or name")
	f.IntVar(&c.limit, "limit", domain.DefaultLimit, "page size")
	f.IntVar(&c.offset, "offset", 0, "page offset")
}

func (c *itemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.Items.List(ctx, domain.ListFilter{Search: c.search, Limit: c.limit, Offset: c.offset})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing items: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ItemsMarkdown(res.Items, res.TotalCount))
	return subcommands.ExitSuccess
}
