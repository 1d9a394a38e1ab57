package eastmoney

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// The remaining read-side calls of the gateway. Field aliases follow the same
// abbreviation scheme as the holdings payload.

// Assets is the funds summary of the trading account.
type Assets struct {
	TotalAsset     decimal.Decimal `json:"Zzc"`
	MarketValue    decimal.Decimal `json:"Zxsz"`
	Balance        decimal.Decimal `json:"Zjye"`
	AvailableFunds decimal.Decimal `json:"Kyzj"`
	WithdrawFunds  decimal.Decimal `json:"Kqzj"`
}

// Order is one entrust row reported by the gateway for the current day.
type Order struct {
	OrderNo    string          `json:"Wtbh"`
	OrderTime  string          `json:"Wtsj"`
	StockCode  string          `json:"Zqdm"`
	StockName  string          `json:"Zqmc"`
	Direction  string          `json:"Mmsm"`
	Price      decimal.Decimal `json:"Wtjg"`
	Amount     int64           `json:"Wtsl"`
	DealAmount int64           `json:"Cjsl"`
	Status     string          `json:"Wtzt"`
}

// Deal is one fill row reported by the gateway for the current day.
type Deal struct {
	DealNo    string          `json:"Cjbh"`
	DealTime  string          `json:"Cjsj"`
	StockCode string          `json:"Zqdm"`
	StockName string          `json:"Zqmc"`
	Direction string          `json:"Mmsm"`
	Price     decimal.Decimal `json:"Cjjg"`
	Amount    int64           `json:"Cjsl"`
}

// GetAssets returns the account funds summary.
func (t *Trader) GetAssets(ctx context.Context) (*Assets, error) {
	// the gateway wraps the single summary row in a list
	var rows []Assets
	if err := t.request(ctx, pathAssets, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("gateway returned no assets row")
	}
	return &rows[0], nil
}

// GetOrders returns today's orders.
func (t *Trader) GetOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := t.request(ctx, pathOrdersData, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetDeals returns today's fills.
func (t *Trader) GetDeals(ctx context.Context) ([]Deal, error) {
	var deals []Deal
	if err := t.request(ctx, pathDealData, nil, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}
