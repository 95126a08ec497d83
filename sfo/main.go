package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/halv/stockfolio/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var verbose = flag.Bool("v", false, "Enable debug logging")

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	os.Exit(int(commander.Execute(context.Background())))
}

// completion wires shell completion. Complete is a no-op unless the shell
// invoked the binary to ask for completions.
func completion() {
	tradeFlags := map[string]complete.Predictor{
		"q":     predict.Something,
		"limit": predict.Something,
	}
	root := &complete.Command{
		Sub: map[string]*complete.Command{
			"register":  {},
			"buy":       {Flags: tradeFlags},
			"sell":      {Flags: tradeFlags},
			"holdings":  {},
			"breakdown": {},
			"chart":     {},
			"export":    {Flags: map[string]complete.Predictor{"o": predict.Files("*.csv")}},
			"suggest":   {},
		},
		Flags: map[string]complete.Predictor{
			"db":        predict.Files("*.db"),
			"reference": predict.Files("*.csv"),
			"u":         predict.Something,
			"v":         predict.Nothing,
		},
	}
	root.Complete("sfo")
}
