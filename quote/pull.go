package quote

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/guonaihong/gout"
)

// Listed is one row of the full market listing.
type Listed struct {
	Code string `json:"code"`
	Type int    `json:"type"`
	Name string `json:"name"`
}

// PullAll downloads the whole A-share listing (code, market type, display
// name) in one unconditional request. The rows nest under data.diff, which
// historically was an object keyed by row index and nowadays is a plain
// array; jsonpath plus a type switch copes with both shapes.
func (c *Client) PullAll(ctx context.Context) ([]Listed, error) {
	var payload any
	err := c.retry(ctx, func() error {
		return gout.GET(c.cfg.ListURL).
			SetTimeout(c.cfg.Timeout).
			SetQuery(gout.H{
				"pn":     "1",
				"pz":     "6000",
				"fs":     "m:1+t:2,m:1+t:23,m:0+t:6,m:0+t:80",
				"fields": "f12,f13,f14",
			}).
			BindJSON(&payload).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("cannot fetch the market listing: %w", err)
	}

	rows, err := jsonpath.Get("$.data.diff", payload)
	if err != nil {
		return nil, fmt.Errorf("cannot locate rows in the listing payload: %w", err)
	}

	var items []any
	switch v := rows.(type) {
	case []any:
		items = v
	case map[string]any:
		// object keyed by row index: restore listing order numerically
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
		for _, key := range keys {
			items = append(items, v[key])
		}
	default:
		return nil, fmt.Errorf("unexpected listing payload shape %T", rows)
	}

	listing := make([]Listed, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var l Listed
		l.Code, _ = row["f12"].(string)
		l.Name, _ = row["f14"].(string)
		if market, ok := row["f13"].(float64); ok {
			l.Type = int(market)
		}
		if l.Code == "" {
			continue
		}
		listing = append(listing, l)
	}
	return listing, nil
}
