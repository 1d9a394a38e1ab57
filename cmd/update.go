package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/stockmon"
	"github.com/google/subcommands"
)

// updateCmd implements the "update" command, the scheduled end-to-end run:
// login or probe, fetch holdings, reconcile, rewrite the watchlist.
type updateCmd struct {
	ocr    string
	dryRun bool
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refresh the watchlist from live brokerage holdings" }
func (*updateCmd) Usage() string {
	return `stockmon update [-ocr <command>] [-n]

Logs into the trade gateway (reusing the cached session when it is still
accepted), fetches the current holdings and reconciles them into the
watchlist file. When the watchlist file does not exist there is nothing to
update and the command exits successfully without touching the gateway.

Credentials come from the EAST_MONEY_USER and EAST_MONEY_SEC environment
variables.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ocr, "ocr", "ddddocr", "external OCR command used to read the login captcha")
	f.BoolVar(&c.dryRun, "n", false, "print the updated watchlist without writing it back")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	records, err := stockmon.LoadWatchlist(*watchlistFile)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("%s does not exist, nothing to update\n", *watchlistFile)
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading watchlist: %v\n", err)
		return subcommands.ExitFailure
	}

	trader, err := newTrader(c.ocr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := trader.AutoLogin(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging into the trade gateway: %v\n", err)
		return subcommands.ExitFailure
	}
	live, err := trader.GetPosition(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	updated := stockmon.Reconcile(live, records)

	data, err := json.MarshalIndent(updated, "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(data))

	if c.dryRun {
		return subcommands.ExitSuccess
	}
	if err := stockmon.SaveWatchlist(*watchlistFile, updated); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing watchlist: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Updated %s with %d live positions.\n", *watchlistFile, len(live))
	return subcommands.ExitSuccess
}
