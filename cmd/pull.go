package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/stockmon/quote"
	"github.com/google/subcommands"
)

// pullCmd dumps the full market listing to a file.
type pullCmd struct {
	out string
}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "download the full stock listing snapshot" }
func (*pullCmd) Usage() string {
	return `stockmon pull [-o <file>]

Downloads the whole A-share listing (code, market type, name) in one request
and writes it as a JSON array. No account needed.
`
}

func (c *pullCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "all_stock.json", "output file for the listing snapshot")
}

func (c *pullCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := quote.NewClient(quote.DefaultConfig())
	listing, err := client.PullAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error downloading the listing: %v\n", err)
		return subcommands.ExitFailure
	}

	data, err := json.Marshal(listing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding the listing: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.out, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Wrote %d listed stocks to %s.\n", len(listing), c.out)
	return subcommands.ExitSuccess
}
