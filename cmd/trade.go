package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/halv/stockfolio"
	"github.com/halv/stockfolio/renderer"
)

// runTrade executes a signed trade and prints the resulting position and any
// realized gain or loss.
func runTrade(ctx context.Context, ticker string, quantity int64, limit float64) subcommands.ExitStatus {
	if limit < 0 {
		fmt.Fprintln(os.Stderr, "Error: -limit must be a positive price.")
		return subcommands.ExitUsageError
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	instr := stockfolio.NewMarketOrder(ticker, stockfolio.Q(quantity))
	if limit > 0 {
		instr = stockfolio.NewLimitOrder(ticker, stockfolio.Q(quantity), stockfolio.USD(limit))
	}

	pos, realized, err := app.coordinator.ExecuteTrade(ctx, app.portfolioID, instr)
	if err != nil {
		// An unpriceable ticker is often a typo; suggest close matches.
		if errors.Is(err, stockfolio.ErrPriceUnavailable) {
			if matches := app.refs.Suggest(instr.Ticker); len(matches) > 0 {
				printMarkdown(renderer.SuggestionsMarkdown(instr.Ticker, matches))
			}
		}
		return fail(err)
	}

	if realized != nil {
		printMarkdown(renderer.RealizedMarkdown(realized))
	}
	if pos == nil {
		fmt.Printf("Position in %s fully closed.\n", instr.Ticker)
		return subcommands.ExitSuccess
	}
	fmt.Printf("Position: %s %s, cost basis %s, market price %s.\n",
		pos.Quantity, pos.Ticker, pos.CostBasis, pos.MarketPrice)
	return subcommands.ExitSuccess
}

type buyCmd struct {
	quantity int64
	limit    float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy shares of a ticker" }
func (*buyCmd) Usage() string {
	return `sfo buy -q <quantity> [-limit <price>] <ticker>

  Buys shares at the current market price, or at the given limit price.
  Buying into a short position covers it.

Usage Examples:
$ sfo buy -q 10 AAPL
$ sfo buy -q 10 -limit 150.50 AAPL
`
}

func (p *buyCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.quantity, "q", 0, "Number of shares to buy.")
	f.Float64Var(&p.limit, "limit", 0, "Execute at this price instead of the market price.")
}

func (p *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(p.Usage())
		return subcommands.ExitUsageError
	}
	return runTrade(ctx, f.Arg(0), p.quantity, p.limit)
}

type sellCmd struct {
	quantity int64
	limit    float64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell or short shares of a ticker" }
func (*sellCmd) Usage() string {
	return `sfo sell -q <quantity> [-limit <price>] <ticker>

  Sells shares at the current market price, or at the given limit price.
  Selling more than is held, or selling with no position at all, opens or
  extends a short.

Usage Examples:
$ sfo sell -q 5 AAPL
$ sfo sell -q 5 -limit 180 TSLA
`
}

func (p *sellCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.quantity, "q", 0, "Number of shares to sell.")
	f.Float64Var(&p.limit, "limit", 0, "Execute at this price instead of the market price.")
}

func (p *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println(p.Usage())
		return subcommands.ExitUsageError
	}
	return runTrade(ctx, f.Arg(0), -p.quantity, p.limit)
}
