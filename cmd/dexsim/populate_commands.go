package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"
)

// populateCommand seeds the mempool with random unboosted traffic, the way
// a handful of retail wallets would. With --suspicious it mixes in the large
// sells and liquidity pulls the scanner is meant to catch.
func populateCommand() *cli.Command {
	return &cli.Command{
		Name:  "populate",
		Usage: "Seed the mempool with random transactions",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "Number of transactions to submit",
			},
			&cli.BoolFlag{
				Name:  "suspicious",
				Usage: "Submit threshold-crossing sells and liquidity removals instead of normal traffic",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Value: 200 * time.Millisecond,
				Usage: "Delay between submissions",
			},
		},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server-url")
			count := c.Int("count")
			suspicious := c.Bool("suspicious")

			for i := 0; i < count; i++ {
				var payload map[string]interface{}
				if suspicious {
					payload = suspiciousTransaction()
				} else {
					payload = normalTransaction()
				}

				var resp map[string]interface{}
				if err := postJSON(serverURL+"/api/v1/transactions", payload, &resp); err != nil {
					fmt.Printf("error adding transaction %d/%d: %v\n", i+1, count, err)
					continue
				}
				fmt.Printf("transaction %d/%d added: type=%s amount=%v\n", i+1, count, payload["type"], payload["amount"])

				time.Sleep(c.Duration("delay"))
			}
			fmt.Println("done")
			return nil
		},
	}
}

// randomAddress generates a random Ethereum-style hex address.
func randomAddress() string {
	const hexdigits = "0123456789abcdef"
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexdigits[rand.Intn(len(hexdigits))]
	}
	return "0x" + string(b)
}

// normalTransaction builds a random unboosted buy, sell, or liquidity add.
func normalTransaction() map[string]interface{} {
	kinds := []string{"buy", "sell", "add_liquidity"}
	kind := kinds[rand.Intn(len(kinds))]
	amount := randomAmount(1000, 100000)

	payload := map[string]interface{}{
		"type":      kind,
		"amount":    amount,
		"mev_boost": false,
	}
	switch kind {
	case "buy":
		payload["buyer"] = randomAddress()
	case "sell":
		payload["seller"] = randomAddress()
	case "add_liquidity":
		payload["provider"] = randomAddress()
	}
	return payload
}

// suspiciousTransaction builds a threshold-crossing sell or liquidity
// removal for the scanner to flag.
func suspiciousTransaction() map[string]interface{} {
	if rand.Intn(2) == 0 {
		return map[string]interface{}{
			"type":      "sell",
			"seller":    randomAddress(),
			"amount":    randomAmount(800000, 1200000),
			"mev_boost": false,
		}
	}
	return map[string]interface{}{
		"type":      "remove_liquidity",
		"provider":  randomAddress(),
		"amount":    randomAmount(150000, 400000),
		"mev_boost": false,
	}
}

// randomAmount returns a random USD amount in [lo, hi) rounded to cents.
func randomAmount(lo, hi float64) float64 {
	v := lo + rand.Float64()*(hi-lo)
	return float64(int(v*100)) / 100
}
