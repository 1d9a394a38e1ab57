package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// ordersCmd prints today's orders and fills.
type ordersCmd struct {
	ocr   string
	deals bool
}

func (*ordersCmd) Name() string     { return "orders" }
func (*ordersCmd) Synopsis() string { return "list today's orders" }
func (*ordersCmd) Usage() string {
	return `stockmon orders [-ocr <command>] [-deals]

Fetches and prints today's orders from the trade gateway, or today's fills
with -deals.
`
}

func (c *ordersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ocr, "ocr", "ddddocr", "external OCR command used to read the login captcha")
	f.BoolVar(&c.deals, "deals", false, "print today's fills instead of orders")
}

func (c *ordersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trader, err := newTrader(c.ocr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := trader.AutoLogin(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging into the trade gateway: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.deals {
		deals, err := trader.GetDeals(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching fills: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%-10s %-8s %-10s %-4s %10s %10s\n", "time", "code", "name", "side", "price", "amount")
		for _, d := range deals {
			fmt.Printf("%-10s %-8s %-10s %-4s %10s %10d\n",
				d.DealTime, d.StockCode, d.StockName, d.Direction, d.Price.StringFixed(3), d.Amount)
		}
		return subcommands.ExitSuccess
	}

	orders, err := trader.GetOrders(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching orders: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%-10s %-8s %-10s %-4s %10s %10s %10s %s\n",
		"time", "code", "name", "side", "price", "amount", "filled", "status")
	for _, o := range orders {
		fmt.Printf("%-10s %-8s %-10s %-4s %10s %10d %10d %s\n",
			o.OrderTime, o.StockCode, o.StockName, o.Direction,
			o.Price.StringFixed(3), o.Amount, o.DealAmount, o.Status)
	}
	return subcommands.ExitSuccess
}
