package services

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// marginPlaces is the rounding applied to the average margin percentage.
const marginPlaces = 1

// Summarize derives the financial summary from the full item set.
//
// It is pure and total: nothing is mutated, empty input yields an all-zero
// summary, and the margin division is guarded so it never divides by zero.
// Because it reads only items, the summary is re-derivable at any time and is
// the reference truth when the running cash balance is suspected of drift.
func Summarize(items []*models.Item) models.FinancialSummary {
	s := models.FinancialSummary{TotalItems: len(items)}

	for _, item := range items {
		switch item.Status {
		case models.StatusSold:
			s.SoldItems++
			s.SaleRevenue = s.SaleRevenue.Add(item.SalePrice)
			s.TotalCostOfSold = s.TotalCostOfSold.Add(item.AcquisitionCost)
		case models.StatusTraded:
			s.TradedItems++
			diff := item.TradeCashDifference
			if diff.IsNegative() {
				// Cash came in with the trade; the cost is realized now.
				s.TradeCashReceived = s.TradeCashReceived.Add(diff.Neg())
				s.TotalCostOfSold = s.TotalCostOfSold.Add(item.AcquisitionCost)
			} else if diff.IsPositive() {
				s.TradeCashPaid = s.TradeCashPaid.Add(diff)
			}
		case models.StatusScammed:
			s.ScammedItems++
			s.LostToScams = s.LostToScams.Add(item.AcquisitionCost)
		case models.StatusRefunded:
			s.RefundedItems++
			s.RefundedAmount = s.RefundedAmount.Add(item.AcquisitionCost)
		}

		if item.Status != models.StatusRefunded {
			s.TotalSpent = s.TotalSpent.Add(item.AcquisitionCost)
		}

		if item.Status.IsActive() {
			s.ActiveItems++
			s.ActiveInventoryCost = s.ActiveInventoryCost.Add(item.AcquisitionCost)
			s.PotentialRevenue = s.PotentialRevenue.Add(item.AskingPrice)
			s.MinimumRevenue = s.MinimumRevenue.Add(item.LowestAcceptablePrice)
		}
	}

	s.TotalRevenue = s.SaleRevenue.Add(s.TradeCashReceived)
	s.TotalProfit = s.TotalRevenue.Sub(s.TotalCostOfSold)

	if s.TotalRevenue.IsPositive() {
		s.AvgMargin = s.TotalProfit.
			Div(s.TotalRevenue).
			Mul(decimal.NewFromInt(100)).
			Round(marginPlaces)
	}

	return s
}
