package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/stockmon"
	"github.com/etnz/stockmon/quote"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// summaryCmd renders the watchlist with live quotes as a markdown table.
type summaryCmd struct {
	all bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the watchlist with live quotes" }
func (*summaryCmd) Usage() string {
	return `stockmon summary [-a]

Displays the watchlist with delayed quotes and market values. By default only
records with a position are shown; -a includes the merely watched ones.
No account needed, quotes come from the public endpoints.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "a", false, "include records without a position")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := stockmon.LoadWatchlist(*watchlistFile)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("%s does not exist, nothing to summarize\n", *watchlistFile)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}

	codes := make([]string, 0, len(records))
	for _, r := range records {
		codes = append(codes, r.Code)
	}
	quotes, err := quote.NewClient(quote.DefaultConfig()).Quotes(ctx, codes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching quotes: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Watchlist\n\n")
	fmt.Fprintf(&b, "| Code | Name | Position | Cost | Last | Value | Title |\n")
	fmt.Fprintf(&b, "|---|---|--:|--:|--:|--:|:-:|\n")

	total := decimal.Zero
	for _, r := range records {
		position := int64(0)
		if r.Position != nil {
			position = *r.Position
		}
		if position == 0 && !c.all {
			continue
		}
		q, quoted := quotes[r.Code]

		name, last, value := "?", "?", "?"
		if quoted {
			name = q.Name
			last = q.Price.StringFixed(3)
			v := q.Price.Mul(decimal.NewFromInt(position))
			value = formatCNY(v)
			total = total.Add(v)
		}
		cost := "-"
		if r.Cost != nil {
			cost = r.Cost.StringFixed(3)
		}
		title := ""
		if r.ShowInTitle != nil && *r.ShowInTitle {
			title = "★"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s |\n",
			r.Code, name, position, cost, last, value, title)
	}
	fmt.Fprintf(&b, "\nTotal market value: **%s**\n", formatCNY(total))

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// formatCNY renders a decimal amount in yuan.
func formatCNY(v decimal.Decimal) string {
	// going through the Money constructor guarantees a non-nil currency
	cur := *money.New(0, money.CNY).Currency()
	return cur.Formatter().Format(v.Shift(int32(cur.Fraction)).IntPart())
}
