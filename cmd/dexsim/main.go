package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "dexsim",
		Usage: "toy DEX mempool and front-running sandbox CLI",
		Description: `A command-line tool for driving and debugging a running dexsim server.

Use this CLI to submit transactions, seed the mempool with traffic, inspect
the market dashboard, and trigger reordering runs.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			// Ledger commands
			{
				Name:  "tx",
				Usage: "Transaction ledger commands",
				Subcommands: []*cli.Command{
					submitCommand(),
					listTransactionsCommand(),
					getTransactionCommand(),
					deleteTransactionCommand(),
				},
			},
			// Mempool seeding
			populateCommand(),
			// Market and MEV commands
			dashboardCommand(),
			suspiciousCommand(),
			frontrunCommand(),
			riskCommand(),
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "dexsim server URL",
				EnvVars: []string{"DEXSIM_SERVER_URL"},
				Value:   "http://localhost:8080",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
