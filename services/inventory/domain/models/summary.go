package models

import "github.com/shopspring/decimal"

// FinancialSummary is the derived, read-only view over the full item set.
// It is recomputed from items on every read and stores nothing; see the
// aggregator in domain/services for the derivation rules.
type FinancialSummary struct {
	TotalItems    int `json:"total_items"`
	ActiveItems   int `json:"active_items"`
	SoldItems     int `json:"sold_items"`
	TradedItems   int `json:"traded_items"`
	ScammedItems  int `json:"scammed_items"`
	RefundedItems int `json:"refunded_items"`

	// TotalSpent is acquisition cost over everything not refunded; refunded
	// items are excluded because their cost came back.
	TotalSpent     decimal.Decimal `json:"total_spent"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`

	SaleRevenue       decimal.Decimal `json:"sale_revenue"`
	TradeCashReceived decimal.Decimal `json:"trade_cash_received"`
	TradeCashPaid     decimal.Decimal `json:"trade_cash_paid"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`

	// TotalCostOfSold recognizes acquisition cost for sold items plus traded
	// items where cash was received. A like-for-like swap defers cost
	// recognition until the received item itself sells.
	TotalCostOfSold decimal.Decimal `json:"total_cost_of_sold"`
	TotalProfit     decimal.Decimal `json:"total_profit"`

	ActiveInventoryCost decimal.Decimal `json:"active_inventory_cost"`
	PotentialRevenue    decimal.Decimal `json:"potential_revenue"`
	MinimumRevenue      decimal.Decimal `json:"minimum_revenue"`

	LostToScams decimal.Decimal `json:"lost_to_scams"`

	// AvgMargin is totalProfit / totalRevenue as a percentage, 0 when there is
	// no revenue.
	AvgMargin decimal.Decimal `json:"avg_margin"`
}
