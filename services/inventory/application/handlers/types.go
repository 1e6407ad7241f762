// Package handlers contains the HTTP handlers for the inventory API.
package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

// ItemResponse is the wire representation of an inventory item.
// Optional money fields use 0 as "not set"; date_sold and traded_for_item_id
// are omitted until the item reaches the matching terminal state.
type ItemResponse struct {
	ID       uuid.UUID `json:"id"        example:"123e4567-e89b-12d3-a456-426614174000"`
	OrgID    uuid.UUID `json:"org_id"    example:"550e8400-e29b-41d4-a716-446655440000"`
	Name     string    `json:"name"      example:"Vintage band tee"`
	Brand    string    `json:"brand,omitempty"`
	Category string    `json:"category,omitempty"`
	Size     string    `json:"size,omitempty"`

	AcquisitionCost       decimal.Decimal `json:"acquisition_cost"`
	AskingPrice           decimal.Decimal `json:"asking_price"`
	LowestAcceptablePrice decimal.Decimal `json:"lowest_acceptable_price"`
	GoalPrice             decimal.Decimal `json:"goal_price"`
	SalePrice             decimal.Decimal `json:"sale_price"`

	Status string `json:"status"  example:"listed"`
	PaidBy string `json:"paid_by" example:"shared"`

	DateAdded time.Time  `json:"date_added"`
	DateSold  *time.Time `json:"date_sold,omitempty"`

	TradedForItemID     *uuid.UUID      `json:"traded_for_item_id,omitempty"`
	TradeCashDifference decimal.Decimal `json:"trade_cash_difference"`

	InConvention     bool `json:"in_convention"`
	EverInConvention bool `json:"ever_in_convention"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
} // @name ItemResponse

func newItemResponse(item *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:                    item.ID,
		OrgID:                 item.OrgID,
		Name:                  item.Name,
		Brand:                 item.Brand,
		Category:              item.Category,
		Size:                  item.Size,
		AcquisitionCost:       item.AcquisitionCost,
		AskingPrice:           item.AskingPrice,
		LowestAcceptablePrice: item.LowestAcceptablePrice,
		GoalPrice:             item.GoalPrice,
		SalePrice:             item.SalePrice,
		Status:                string(item.Status),
		PaidBy:                string(item.PaidBy),
		DateAdded:             item.DateAdded,
		DateSold:              item.DateSold,
		TradeCashDifference:   item.TradeCashDifference,
		InConvention:          item.InConvention,
		EverInConvention:      item.EverInConvention,
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
	}
	if item.TradedForItemID.Valid {
		id := item.TradedForItemID.UUID
		resp.TradedForItemID = &id
	}
	return resp
}

func newItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	return out
}

// CapitalResponse is the wire representation of an org's capital account.
type CapitalResponse struct {
	OrgID              uuid.UUID       `json:"org_id"`
	CashOnHand         decimal.Decimal `json:"cash_on_hand"`
	PartnerAInvestment decimal.Decimal `json:"partner_a_investment"`
	PartnerBInvestment decimal.Decimal `json:"partner_b_investment"`
	UpdatedAt          time.Time       `json:"updated_at"`
} // @name CapitalResponse

func newCapitalResponse(acct *models.CapitalAccount) CapitalResponse {
	return CapitalResponse{
		OrgID:              acct.OrgID,
		CashOnHand:         acct.CashOnHand,
		PartnerAInvestment: acct.PartnerAInvestment,
		PartnerBInvestment: acct.PartnerBInvestment,
		UpdatedAt:          acct.UpdatedAt,
	}
}
