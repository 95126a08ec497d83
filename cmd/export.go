package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/halv/stockfolio"
)

type exportCmd struct {
	outputFile string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio as CSV" }
func (*exportCmd) Usage() string {
	return `sfo export [-o <file>]

  Refreshes prices and writes the portfolio as CSV, one row per position,
  to stdout or to the given file.

Usage Examples:
$ sfo export -o portfolio.csv
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.outputFile, "o", "", "Write to this file instead of stdout.")
}

func (p *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	report, err := app.coordinator.RefreshPositions(ctx, app.portfolioID)
	if err != nil {
		return fail(err)
	}

	out := os.Stdout
	if p.outputFile != "" {
		out, err = os.Create(p.outputFile)
		if err != nil {
			return fail(err)
		}
		defer out.Close()
	}
	if err := stockfolio.ExportCSV(out, report); err != nil {
		return fail(err)
	}
	if p.outputFile != "" {
		fmt.Printf("Exported %d positions to %s\n", len(report.Positions), p.outputFile)
	}
	return subcommands.ExitSuccess
}
