package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/halv/stockfolio/renderer"
)

type holdingCmd struct{}

func (*holdingCmd) Name() string     { return "holdings" }
func (*holdingCmd) Synopsis() string { return "refresh prices and show all positions" }
func (*holdingCmd) Usage() string {
	return `sfo holdings

  Refreshes the market price of every position and prints the portfolio as a
  table. Tickers whose price is unavailable keep their last known price and
  are listed in a note.
`
}

func (*holdingCmd) SetFlags(f *flag.FlagSet) {}

func (*holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	report, err := app.coordinator.RefreshPositions(ctx, app.portfolioID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.HoldingMarkdown(report))
	return subcommands.ExitSuccess
}

type breakdownCmd struct{}

func (*breakdownCmd) Name() string     { return "breakdown" }
func (*breakdownCmd) Synopsis() string { return "show market value split by GICS sector" }
func (*breakdownCmd) Usage() string {
	return `sfo breakdown

  Groups positions by sector and prints each sector's market value and its
  share of the total. Short positions contribute negatively.
`
}

func (*breakdownCmd) SetFlags(f *flag.FlagSet) {}

func (*breakdownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	breakdown, err := app.coordinator.Breakdown(ctx, app.portfolioID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.BreakdownMarkdown(breakdown))
	return subcommands.ExitSuccess
}

type chartCmd struct{}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "show a bar chart of value per ticker" }
func (*chartCmd) Usage() string {
	return `sfo chart

  Refreshes prices and prints a horizontal bar chart of market value per
  ticker, scaled to the largest position.
`
}

func (*chartCmd) SetFlags(f *flag.FlagSet) {}

func (*chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	report, err := app.coordinator.RefreshPositions(ctx, app.portfolioID)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.ValueChartMarkdown(report))
	return subcommands.ExitSuccess
}

type suggestCmd struct{}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest tickers matching a prefix" }
func (*suggestCmd) Usage() string {
	return `sfo suggest <prefix>

  Lists S&P 500 tickers starting with the given prefix, with the company
  name and sector.

Usage Examples:
$ sfo suggest GOO
`
}

func (*suggestCmd) SetFlags(f *flag.FlagSet) {}

func (p *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(p.Usage())
		return subcommands.ExitUsageError
	}

	refs, err := refTable()
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SuggestionsMarkdown(f.Arg(0), refs.Suggest(f.Arg(0))))
	return subcommands.ExitSuccess
}
