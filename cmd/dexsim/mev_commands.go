package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Show the derived market state",
		Action: func(c *cli.Context) error {
			var snapshot map[string]interface{}
			if err := getJSON(c.String("server-url")+"/api/v1/dashboard", &snapshot); err != nil {
				return err
			}
			return printJSON(snapshot)
		},
	}
}

func suspiciousCommand() *cli.Command {
	return &cli.Command{
		Name:  "suspicious",
		Usage: "List transactions crossing the reorder thresholds",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "must-jq",
				Aliases: []string{"jq"},
				Usage:   "jq filter that must evaluate to true, e.g. '.type == \"remove_liquidity\"' (can be repeated, all must match)",
			},
		},
		Action: func(c *cli.Context) error {
			filters, err := compileJQFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			var flagged []map[string]interface{}
			if err := getJSON(c.String("server-url")+"/api/v1/suspicious", &flagged); err != nil {
				return err
			}
			flagged = filterTransactions(flagged, filters)
			if len(flagged) == 0 {
				fmt.Println("no suspicious transactions")
				return nil
			}
			return printJSON(flagged)
		},
	}
}

func frontrunCommand() *cli.Command {
	return &cli.Command{
		Name:  "frontrun",
		Usage: "Execute the reordering strategy against a flagged transaction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tx-id",
				Usage:    "Id of the flagged transaction",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			// Blocks across the inter-leg delay; the server holds the
			// request open until both legs have landed.
			var result map[string]interface{}
			payload := map[string]string{"tx_id": c.String("tx-id")}
			if err := postJSON(c.String("server-url")+"/api/v1/frontrun", payload, &result); err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func riskCommand() *cli.Command {
	return &cli.Command{
		Name:  "risk",
		Usage: "Run the risk analysis over the full ledger",
		Action: func(c *cli.Context) error {
			var analysis map[string]interface{}
			if err := getJSON(c.String("server-url")+"/api/v1/risk", &analysis); err != nil {
				return err
			}
			return printJSON(analysis)
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Action: func(c *cli.Context) error {
			if err := getJSON(c.String("server-url")+"/health", nil); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}
