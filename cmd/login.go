package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// loginCmd forces a fresh captcha login, ignoring any cached session.
type loginCmd struct {
	ocr string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "force a fresh login to the trade gateway" }
func (*loginCmd) Usage() string {
	return `stockmon login [-ocr <command>]

Performs a full captcha login even when a cached session exists, and stores
the fresh session for the other commands.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ocr, "ocr", "ddddocr", "external OCR command used to read the login captcha")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trader, err := newTrader(c.ocr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := trader.Login(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error logging into the trade gateway: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("✅ Session stored.")
	return subcommands.ExitSuccess
}
