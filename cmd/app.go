// Package cmd implements the CLI application that keeps the watchlist in sync
// with the trade account.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/etnz/stockmon"
	"github.com/etnz/stockmon/eastmoney"
	"github.com/google/subcommands"
)

// Commands lists every subcommand, in display order.
// A main package registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&updateCmd{},
	&loginCmd{},
	&positionsCmd{},
	&ordersCmd{},
	&summaryCmd{},
	&pullCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var watchlistFile = flag.String("watchlist-file", stockmon.DefaultWatchlistPath(), "Path to the watchlist file (JSON array)")

// credentials reads the trade account credentials from the environment.
func credentials() (user, secret string, err error) {
	user = os.Getenv("EAST_MONEY_USER")
	secret = os.Getenv("EAST_MONEY_SEC")
	if user == "" || secret == "" {
		return "", "", fmt.Errorf("EAST_MONEY_USER and EAST_MONEY_SEC must be set")
	}
	return user, secret, nil
}

// newTrader builds a gateway trader from the environment and the given OCR
// command.
func newTrader(ocr string) (*eastmoney.Trader, error) {
	user, secret, err := credentials()
	if err != nil {
		return nil, err
	}
	return eastmoney.New(eastmoney.DefaultConfig(), user, secret, eastmoney.CommandSolver{Name: ocr})
}
