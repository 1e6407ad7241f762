package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func soldItem(cost, price string) *models.Item {
	return &models.Item{
		Status:          models.StatusSold,
		AcquisitionCost: d(cost),
		SalePrice:       d(price),
	}
}

func TestSummarize(t *testing.T) {
	t.Run("empty set yields all zeros", func(t *testing.T) {
		s := Summarize(nil)
		if s.TotalItems != 0 || s.ActiveItems != 0 {
			t.Errorf("expected zero counts, got %+v", s)
		}
		if !s.TotalRevenue.IsZero() || !s.TotalProfit.IsZero() || !s.AvgMargin.IsZero() {
			t.Errorf("expected zero money fields, got %+v", s)
		}
	})

	t.Run("sales and a scam", func(t *testing.T) {
		items := []*models.Item{
			soldItem("50", "90"),
			soldItem("30", "30"),
			{Status: models.StatusScammed, AcquisitionCost: d("40")},
		}
		s := Summarize(items)

		if s.SoldItems != 2 || s.ScammedItems != 1 {
			t.Fatalf("counts wrong: %+v", s)
		}
		if !s.TotalRevenue.Equal(d("120")) {
			t.Errorf("TotalRevenue = %s, want 120", s.TotalRevenue)
		}
		if !s.TotalCostOfSold.Equal(d("80")) {
			t.Errorf("TotalCostOfSold = %s, want 80", s.TotalCostOfSold)
		}
		if !s.TotalProfit.Equal(d("40")) {
			t.Errorf("TotalProfit = %s, want 40", s.TotalProfit)
		}
		if !s.LostToScams.Equal(d("40")) {
			t.Errorf("LostToScams = %s, want 40", s.LostToScams)
		}
		// 40/120 * 100 rounded to one decimal place.
		if !s.AvgMargin.Equal(d("33.3")) {
			t.Errorf("AvgMargin = %s, want 33.3", s.AvgMargin)
		}
		// The scam cost is not part of cost of sold; it is tracked separately.
		if !s.TotalSpent.Equal(d("120")) {
			t.Errorf("TotalSpent = %s, want 120", s.TotalSpent)
		}
	})

	t.Run("trade with cash received realizes cost", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusTraded, AcquisitionCost: d("80"), TradeCashDifference: d("-20")},
		}
		s := Summarize(items)

		if !s.TradeCashReceived.Equal(d("20")) {
			t.Errorf("TradeCashReceived = %s, want 20", s.TradeCashReceived)
		}
		if !s.TotalCostOfSold.Equal(d("80")) {
			t.Errorf("TotalCostOfSold = %s, want 80", s.TotalCostOfSold)
		}
		if !s.TotalRevenue.Equal(d("20")) {
			t.Errorf("TotalRevenue = %s, want 20", s.TotalRevenue)
		}
		if !s.TotalProfit.Equal(d("-60")) {
			t.Errorf("TotalProfit = %s, want -60", s.TotalProfit)
		}
	})

	t.Run("trade with cash paid defers cost", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusTraded, AcquisitionCost: d("80"), TradeCashDifference: d("20")},
		}
		s := Summarize(items)

		if !s.TradeCashPaid.Equal(d("20")) {
			t.Errorf("TradeCashPaid = %s, want 20", s.TradeCashPaid)
		}
		if !s.TotalCostOfSold.IsZero() {
			t.Errorf("TotalCostOfSold = %s, want 0", s.TotalCostOfSold)
		}
		if !s.TotalRevenue.IsZero() {
			t.Errorf("TotalRevenue = %s, want 0", s.TotalRevenue)
		}
	})

	t.Run("like-for-like swap moves no money", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusTraded, AcquisitionCost: d("80"), TradeCashDifference: decimal.Zero},
		}
		s := Summarize(items)
		if !s.TradeCashReceived.IsZero() || !s.TradeCashPaid.IsZero() || !s.TotalCostOfSold.IsZero() {
			t.Errorf("swap must not move money: %+v", s)
		}
	})

	t.Run("refunds leave total spent", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusRefunded, AcquisitionCost: d("25")},
			{Status: models.StatusListed, AcquisitionCost: d("10"), AskingPrice: d("35"), LowestAcceptablePrice: d("15")},
		}
		s := Summarize(items)

		if !s.RefundedAmount.Equal(d("25")) {
			t.Errorf("RefundedAmount = %s, want 25", s.RefundedAmount)
		}
		if !s.TotalSpent.Equal(d("10")) {
			t.Errorf("TotalSpent = %s, want 10 (refunded cost came back)", s.TotalSpent)
		}
		if s.ActiveItems != 1 {
			t.Errorf("ActiveItems = %d, want 1", s.ActiveItems)
		}
		if !s.ActiveInventoryCost.Equal(d("10")) || !s.PotentialRevenue.Equal(d("35")) || !s.MinimumRevenue.Equal(d("15")) {
			t.Errorf("active projections wrong: %+v", s)
		}
	})

	t.Run("archive-hold is not active inventory", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusArchiveHold, AcquisitionCost: d("10"), AskingPrice: d("99")},
		}
		s := Summarize(items)
		if s.ActiveItems != 0 || !s.PotentialRevenue.IsZero() {
			t.Errorf("parked item must not count as active: %+v", s)
		}
		if !s.TotalSpent.Equal(d("10")) {
			t.Errorf("TotalSpent = %s, want 10", s.TotalSpent)
		}
	})

	t.Run("margin is zero without revenue", func(t *testing.T) {
		items := []*models.Item{
			{Status: models.StatusScammed, AcquisitionCost: d("40")},
		}
		s := Summarize(items)
		if !s.AvgMargin.IsZero() {
			t.Errorf("AvgMargin = %s, want 0", s.AvgMargin)
		}
	})
}
