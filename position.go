package stockmon

import (
	"github.com/shopspring/decimal"
)

// Position is a single line of brokerage-reported holdings as returned by the
// trade gateway. The JSON aliases are the gateway's own abbreviations: Zqdm is
// the stock code, Zqmc the display name, Zqsl the total amount held, Kysl the
// amount currently tradable, Cbjg the average acquisition price and Zxjg the
// latest quoted price.
//
// A Position is an immutable snapshot: it is built fresh on every holdings
// fetch and never persisted, only its fields feed into watchlist records.
type Position struct {
	StockCode     string          `json:"Zqdm"`
	StockName     string          `json:"Zqmc"`
	CurrentAmount int64           `json:"Zqsl"`
	EnableAmount  int64           `json:"Kysl"`
	CostPrice     decimal.Decimal `json:"Cbjg"`
	LastPrice     decimal.Decimal `json:"Zxjg"`
}

// MarketValue returns the position value at the latest quoted price.
func (p Position) MarketValue() decimal.Decimal {
	return p.LastPrice.Mul(decimal.NewFromInt(p.CurrentAmount))
}
