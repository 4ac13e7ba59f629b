package main

import (
	"context"
	"flag"
	"os"

	rollcmd "github.com/louisbranch/diceroller/internal/cmd/roll"
	platformcmd "github.com/louisbranch/diceroller/internal/platform/cmd"
	"github.com/louisbranch/diceroller/internal/platform/config"
)

// main rolls the expressions given as arguments, or one per line of stdin.
func main() {
	cfg, err := rollcmd.ParseConfig(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	platformcmd.Main(platformcmd.Command{
		Name:     "roll",
		Reported: []error{rollcmd.ErrFailed},
		Run: func(ctx context.Context) error {
			return rollcmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
		},
	})
}
