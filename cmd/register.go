package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/halv/stockfolio/store"
)

type registerCmd struct{}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user and their portfolio" }
func (*registerCmd) Usage() string {
	return `sfo register [-u <user>]

  Creates the user and an empty portfolio for them. Every other command
  operates on the portfolio of the user given by -u.
`
}

func (*registerCmd) SetFlags(f *flag.FlagSet) {}

func (*registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := store.Open(*dbFile)
	if err != nil {
		return fail(err)
	}
	defer s.Close()

	userID, err := s.RegisterUser(ctx, *userName)
	if err != nil {
		return fail(err)
	}
	if _, err := s.EnsurePortfolio(ctx, userID, *userName); err != nil {
		return fail(err)
	}

	fmt.Printf("Registered %q with an empty portfolio.\n", *userName)
	return subcommands.ExitSuccess
}
