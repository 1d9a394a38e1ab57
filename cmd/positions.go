package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// positionsCmd prints the live holdings reported by the gateway.
type positionsCmd struct {
	ocr string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "list current brokerage holdings" }
func (*positionsCmd) Usage() string {
	return `stockmon positions [-ocr <command>]

Fetches and prints the current holdings from the trade gateway.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ocr, "ocr", "ddddocr", "external OCR command used to read the login captcha")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trader, err := newTrader(c.ocr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := trader.AutoLogin(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging into the trade gateway: %v\n", err)
		return subcommands.ExitFailure
	}
	positions, err := trader.GetPosition(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%-8s %-10s %10s %10s %10s %10s %14s\n",
		"code", "name", "held", "tradable", "cost", "last", "value")
	for _, p := range positions {
		fmt.Printf("%-8s %-10s %10d %10d %10s %10s %14s\n",
			p.StockCode, p.StockName, p.CurrentAmount, p.EnableAmount,
			p.CostPrice.StringFixed(3), p.LastPrice.StringFixed(3),
			p.MarketValue().StringFixed(2))
	}

	assets, err := trader.GetAssets(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching account funds: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("\ntotal %s, securities %s, cash %s (available %s)\n",
		formatCNY(assets.TotalAsset), formatCNY(assets.MarketValue),
		formatCNY(assets.Balance), formatCNY(assets.AvailableFunds))
	return subcommands.ExitSuccess
}
