package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a transaction to the mempool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Transaction type (buy, sell, add_liquidity, remove_liquidity)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Party address (buyer, seller, or provider depending on type)",
			},
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "USD amount",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "boost",
				Usage: "Execute immediately instead of waiting out the settlement delay",
			},
		},
		Action: func(c *cli.Context) error {
			txType := c.String("type")
			address := c.String("address")

			payload := map[string]interface{}{
				"type":      txType,
				"amount":    c.String("amount"),
				"mev_boost": c.Bool("boost"),
			}
			switch txType {
			case "buy":
				payload["buyer"] = address
			case "sell":
				payload["seller"] = address
			case "add_liquidity", "remove_liquidity":
				payload["provider"] = address
			}

			var resp map[string]interface{}
			if err := postJSON(c.String("server-url")+"/api/v1/transactions", payload, &resp); err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func listTransactionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all transactions in the mempool",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "must-jq",
				Aliases: []string{"jq"},
				Usage:   "jq filter that must evaluate to true, e.g. '.type == \"sell\"' or '(.amount | tonumber) > 800000' (can be repeated, all must match)",
			},
		},
		Action: func(c *cli.Context) error {
			filters, err := compileJQFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			var txs []map[string]interface{}
			if err := getJSON(c.String("server-url")+"/api/v1/transactions", &txs); err != nil {
				return err
			}
			txs = filterTransactions(txs, filters)
			fmt.Printf("%d transaction(s)\n", len(txs))
			return printJSON(txs)
		},
	}
}

func getTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a transaction by id",
		ArgsUsage: "TX_ID",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction id is required")
			}
			var tx map[string]interface{}
			if err := getJSON(c.String("server-url")+"/api/v1/transactions/"+c.Args().Get(0), &tx); err != nil {
				return err
			}
			return printJSON(tx)
		},
	}
}

func deleteTransactionCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a transaction from the mempool",
		ArgsUsage: "TX_ID",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction id is required")
			}
			id := c.Args().Get(0)
			if err := deleteJSON(c.String("server-url") + "/api/v1/transactions/" + id); err != nil {
				return err
			}
			fmt.Printf("transaction %s removed\n", id)
			return nil
		},
	}
}
