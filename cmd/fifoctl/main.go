// Command fifoctl inspects a fifostock database from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"fifostock/internal/app"
	"fifostock/internal/renderer"
	"fifostock/pkg/logger"
)

var (
	databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	width       = flag.Int("width", 160, "word wrap width of rendered output")
	raw         = flag.Bool("raw", false, "print markdown without terminal styling")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&reportCmd{}, "inventory")
	commander.Register(&itemsCmd{}, "inventory")
	commander.Register(&verifyCmd{}, "inventory")
	commander.Register(&movementsCmd{}, "inventory")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openApp connects with a quiet logger. Migrations are left to the server.
func openApp(ctx context.Context) (*app.App, error) {
	if *databaseURL == "" {
		return nil, fmt.Errorf("-database-url or DATABASE_URL is required")
	}
	ctx = logger.WithLogger(ctx, logger.Nop())
	return app.New(ctx, app.Config{DatabaseURL: *databaseURL, MaxConns: 2})
}

func printMarkdown(md string) {
	if *raw {
		fmt.Print(md)
		return
	}
	fmt.Print(renderer.Terminal(md, *width))
}
