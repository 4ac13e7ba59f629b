package main

import (
	"context"
	"flag"
	"os"

	mcpcmd "github.com/louisbranch/diceroller/internal/cmd/mcp"
	platformcmd "github.com/louisbranch/diceroller/internal/platform/cmd"
	"github.com/louisbranch/diceroller/internal/platform/config"
)

// main serves the dice roller over MCP on stdio or HTTP.
func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	platformcmd.Main(platformcmd.Command{
		Name: "mcp",
		Run: func(ctx context.Context) error {
			return mcpcmd.Run(ctx, cfg)
		},
	})
}
