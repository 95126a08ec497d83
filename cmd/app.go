// Package cmd implements the CLI application to manage a stock portfolio.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/halv/stockfolio"
	"github.com/halv/stockfolio/reference"
	"github.com/halv/stockfolio/store"
	"github.com/halv/stockfolio/yahoo"
)

// Commands lists every subcommand; a main package registers them all.
var Commands = []subcommands.Command{
	&registerCmd{},
	&buyCmd{},
	&sellCmd{},
	&holdingCmd{},
	&breakdownCmd{},
	&chartCmd{},
	&exportCmd{},
	&suggestCmd{},
}

// As a CLI application it has a very short lived lifecycle, so it is ok to
// use global variables for the shared flags.

var (
	dbFile        = flag.String("db", envOr("SFO_DB", "stockfolio.db"), "Path to the SQLite portfolio database")
	referenceFile = flag.String("reference", envOr("SFO_REFERENCE", "sp500.csv"), "Path to the S&P 500 constituents CSV")
	userName      = flag.String("u", envOr("SFO_USER", envOr("USER", "me")), "User the portfolio belongs to")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// app bundles the store, the coordinator and the portfolio id of the
// current user, opened once per command execution.
type app struct {
	store       *store.Store
	coordinator *stockfolio.Coordinator
	refs        stockfolio.ReferenceLookup
	portfolioID int64
}

// openApp opens the database and the reference table and resolves the
// current user's portfolio. The caller must Close it.
func openApp(ctx context.Context) (*app, error) {
	s, err := store.Open(*dbFile)
	if err != nil {
		return nil, err
	}

	refs, err := reference.Load(*referenceFile)
	if err != nil {
		s.Close()
		return nil, err
	}

	userID, err := s.Login(ctx, *userName)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w (run `sfo register -u %s` first)", err, *userName)
	}
	portfolioID, err := s.EnsurePortfolio(ctx, userID, *userName)
	if err != nil {
		s.Close()
		return nil, err
	}

	return &app{
		store:       s,
		coordinator: stockfolio.NewCoordinator(s, yahoo.New(), refs),
		refs:        refs,
		portfolioID: portfolioID,
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

// refTable loads the reference table alone, for commands that never touch
// the database.
func refTable() (*reference.Table, error) {
	return reference.Load(*referenceFile)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// fail prints the error and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
