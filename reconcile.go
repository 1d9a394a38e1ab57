package stockmon

import (
	"slices"

	"github.com/shopspring/decimal"
)

// admissionThreshold is the minimum market value for a live position that is
// not yet tracked to be added to the watchlist. Dust positions stay untracked.
var admissionThreshold = decimal.NewFromInt(1000)

// highlightThreshold is the position-times-cost value above which a record is
// flagged for display in the monitor title bar.
var highlightThreshold = decimal.NewFromInt(1000)

// Reconcile merges a live holdings snapshot into the persisted watchlist and
// returns the complete replacement record set:
//
//   - records whose code appears in the live snapshot get their cost and
//     position refreshed from the broker's numbers;
//   - live positions unseen in the watchlist are admitted as new records only
//     when their market value reaches the admission threshold;
//   - records holding a position that vanished from the live snapshot (sold
//     since the last run) are zeroed, not deleted: position and cost drop to
//     zero and the title flag is cleared;
//   - records whose position times cost exceeds the highlight threshold get
//     the title flag set. This runs after zeroing, so a just-zeroed record
//     never re-qualifies in the same pass.
//
// The result is sorted by descending position-times-cost; ties keep the
// watchlist order, new admissions last. No record is ever dropped.
func Reconcile(live []Position, persisted []Record) []Record {
	records := make([]Record, len(persisted))
	copy(records, persisted)

	index := make(map[string]int, len(records))
	for i, r := range records {
		index[r.Code] = i
	}

	for _, p := range live {
		cost, position := p.CostPrice, p.CurrentAmount
		if i, ok := index[p.StockCode]; ok {
			records[i].Cost = &cost
			records[i].Position = &position
			continue
		}
		if p.MarketValue().LessThan(admissionThreshold) {
			continue
		}
		records = append(records, Record{Code: p.StockCode, Cost: &cost, Position: &position})
		index[p.StockCode] = len(records) - 1
	}

	held := make(map[string]bool, len(live))
	for _, p := range live {
		held[p.StockCode] = true
	}

	for i := range records {
		r := &records[i]
		if r.Position != nil && *r.Position > 0 && !held[r.Code] {
			zeroCost, zeroPosition, show := decimal.Zero, int64(0), false
			r.Cost = &zeroCost
			r.Position = &zeroPosition
			r.ShowInTitle = &show
		}
		if r.Weight().GreaterThan(highlightThreshold) {
			show := true
			r.ShowInTitle = &show
		}
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return b.Weight().Cmp(a.Weight())
	})
	return records
}
