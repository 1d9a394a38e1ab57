// Package stockmon keeps a watchlist file in sync with live brokerage
// holdings.
//
// The watchlist is a JSON array of records, one per tracked security, read and
// written by the desktop monitor. The stockmon command logs into the trade
// gateway, fetches the current holdings and reconciles them into the
// watchlist: costs and position sizes are refreshed, freshly bought securities
// above a value threshold are added, sold-out positions are zeroed (never
// deleted), and records worth highlighting are flagged for the title bar.
//
// This package holds the domain types and the reconciliation algorithm. The
// gateway client lives in the eastmoney subpackage, the public quote endpoints
// in quote, and the CLI in cmd.
package stockmon
