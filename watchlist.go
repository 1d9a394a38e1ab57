package stockmon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
)

// Record is one watchlist entry, keyed by the stock code. Cost, position and
// the title-bar flag are optional: a nil pointer means the field is absent
// from the file, which is not the same thing as a zero value. Any other field
// the user (or the monitor) put in the record is kept in Extra and written
// back verbatim.
type Record struct {
	Code        string
	Cost        *decimal.Decimal
	Position    *int64
	ShowInTitle *bool
	Extra       map[string]json.RawMessage
}

// Weight is the sorting and highlighting key of a record: position times cost,
// zero when either field is absent.
func (r Record) Weight() decimal.Decimal {
	if r.Cost == nil || r.Position == nil {
		return decimal.Zero
	}
	return r.Cost.Mul(decimal.NewFromInt(*r.Position))
}

// UnmarshalJSON splits a record object into the known fields and the Extra
// remainder. The title flag historically appears as either a bool or the
// strings "true"/"false" in hand-edited files, both are accepted.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Record{}
	for key, raw := range fields {
		var err error
		switch key {
		case "code":
			err = json.Unmarshal(raw, &r.Code)
		case "cost":
			var cost decimal.Decimal
			if err = json.Unmarshal(raw, &cost); err == nil {
				r.Cost = &cost
			}
		case "position":
			var position int64
			if err = json.Unmarshal(raw, &position); err == nil {
				r.Position = &position
			}
		case "showInTitle":
			var show bool
			if err = json.Unmarshal(raw, &show); err != nil {
				var s string
				if serr := json.Unmarshal(raw, &s); serr == nil {
					show, err = s == "true", nil
				}
			}
			if err == nil {
				r.ShowInTitle = &show
			}
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[key] = raw
		}
		if err != nil {
			return fmt.Errorf("cannot parse watchlist field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON writes the known fields first, in a stable order, then the Extra
// fields sorted by name. Cost is emitted as a JSON number, not a string, so
// the file stays readable by the monitor.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("code", r.Code)
	if r.Cost != nil {
		w.Append("cost", json.Number(r.Cost.String()))
	}
	if r.Position != nil {
		w.Append("position", *r.Position)
	}
	if r.ShowInTitle != nil {
		w.Append("showInTitle", *r.ShowInTitle)
	}
	keys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.Append(key, r.Extra[key])
	}
	return w.MarshalJSON()
}

// DefaultWatchlistPath returns the watchlist location shared with the desktop
// monitor.
func DefaultWatchlistPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "StockMonitor.json"
	}
	return filepath.Join(home, ".config", "StockMonitor.json")
}

// LoadWatchlist reads the watchlist file. A missing file is surfaced as the
// os.ReadFile error (fs.ErrNotExist) so the caller can treat "no watchlist"
// as nothing to do rather than a failure.
func LoadWatchlist(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cannot parse watchlist %q: %w", path, err)
	}
	return records, nil
}

// SaveWatchlist rewrites the whole watchlist file, pretty-printed.
func SaveWatchlist(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot encode watchlist: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write watchlist %q: %w", path, err)
	}
	return nil
}
