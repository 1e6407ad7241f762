// Package services contains stateless domain services for the inventory
// bounded context: the status transition policy, the financial aggregator and
// the convention release rules. They operate purely on domain types and have
// zero external dependencies beyond the domain layer.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain"
	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// TransitionEffect classifies what a status change does to cash-on-hand.
type TransitionEffect int

const (
	// EffectNone — pure relabeling, no ledger adjustment.
	EffectNone TransitionEffect = iota
	// EffectDeductCost — shared acquisition, cost leaves cash-on-hand.
	EffectDeductCost
	// EffectRestoreCost — shared purchase refunded, cost returns.
	EffectRestoreCost
	// EffectAddSaleRevenue — item sold, sale price enters cash-on-hand.
	EffectAddSaleRevenue
	// EffectAddTradeCashDelta — item traded, the negated trade cash difference
	// is applied (cash received adds, cash paid out subtracts).
	EffectAddTradeCashDelta
)

func (e TransitionEffect) String() string {
	switch e {
	case EffectDeductCost:
		return "deduct-cost"
	case EffectRestoreCost:
		return "restore-cost"
	case EffectAddSaleRevenue:
		return "add-sale-revenue"
	case EffectAddTradeCashDelta:
		return "add-trade-cash-delta"
	default:
		return "none"
	}
}

// ClassifyCreation returns the ledger effect of creating an item. Only shared
// purchases touch the business account; partner-funded acquisitions are
// financially silent here.
func ClassifyCreation(paidBy models.PaidBy) TransitionEffect {
	if paidBy == models.PaidByShared {
		return EffectDeductCost
	}
	return EffectNone
}

// Classify returns the ledger effect of moving an item from old to next.
//
// The asymmetries here are deliberate, inherited behavior:
//   - un-selling (sold → listed) does not restore cash; sales are reversed
//     manually, not through this policy;
//   - a refund only restores cost for shared-paid items, because a partner's
//     private purchase never left the shared account in the first place;
//   - deletion is not a transition and never reaches this policy.
func Classify(old, next models.Status, paidBy models.PaidBy) TransitionEffect {
	if old == next {
		return EffectNone
	}

	switch next {
	case models.StatusRefunded:
		if paidBy == models.PaidByShared {
			return EffectRestoreCost
		}
		return EffectNone
	case models.StatusSold:
		if !old.IsTerminal() {
			return EffectAddSaleRevenue
		}
		return EffectNone
	case models.StatusTraded:
		if !old.IsTerminal() {
			return EffectAddTradeCashDelta
		}
		return EffectNone
	default:
		return EffectNone
	}
}

// CashDelta computes the signed cash-on-hand delta for effect from the item's
// stored amounts. Missing or negative amounts fail with ErrInvalidItemState;
// callers must reject the mutation before anything is written.
func CashDelta(effect TransitionEffect, item *models.Item) (decimal.Decimal, error) {
	switch effect {
	case EffectDeductCost:
		if item.AcquisitionCost.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative acquisition cost", domain.ErrInvalidItemState)
		}
		return item.AcquisitionCost.Neg(), nil
	case EffectRestoreCost:
		if item.AcquisitionCost.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative acquisition cost", domain.ErrInvalidItemState)
		}
		return item.AcquisitionCost, nil
	case EffectAddSaleRevenue:
		if item.SalePrice.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative sale price", domain.ErrInvalidItemState)
		}
		return item.SalePrice, nil
	case EffectAddTradeCashDelta:
		// Negative difference = cash received = balance goes up.
		return item.TradeCashDifference.Neg(), nil
	default:
		return decimal.Zero, nil
	}
}

// LedgerReason maps a ledger-relevant effect to the reason recorded on its
// ledger entry. EffectNone has no reason.
func LedgerReason(effect TransitionEffect) (models.LedgerReason, bool) {
	switch effect {
	case EffectDeductCost:
		return models.LedgerReasonAcquisition, true
	case EffectRestoreCost:
		return models.LedgerReasonRefund, true
	case EffectAddSaleRevenue:
		return models.LedgerReasonSale, true
	case EffectAddTradeCashDelta:
		return models.LedgerReasonTrade, true
	default:
		return "", false
	}
}
