package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain"
)

// Item is the core aggregate for this bounded context: a single resale piece
// tracked from acquisition through one of its terminal outcomes.
//
// Optional money fields (asking/lowest/goal/sale price, trade cash difference)
// use the zero decimal as "not set"; all persisted amounts except
// TradeCashDifference are non-negative. TradeCashDifference is signed:
// positive means cash was paid out on top of the trade, negative means cash
// was received.
type Item struct {
	ID    uuid.UUID
	OrgID uuid.UUID // tenant scope — always filter by this in queries

	Name     string
	Brand    string
	Category string
	Size     string

	AcquisitionCost       decimal.Decimal
	AskingPrice           decimal.Decimal
	LowestAcceptablePrice decimal.Decimal
	GoalPrice             decimal.Decimal
	SalePrice             decimal.Decimal

	Status Status
	PaidBy PaidBy

	DateAdded time.Time
	DateSold  *time.Time

	TradedForItemID     uuid.NullUUID
	TradeCashDifference decimal.Decimal

	// InConvention marks the item as currently active in a convention event.
	// EverInConvention is a one-way latch: it is the only join key between an
	// event and sales that may land long after the event ends, so no code path
	// may clear it. Mutate these through TagConvention/UntagConvention only.
	InConvention     bool
	EverInConvention bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItemParams carries the caller-supplied fields for NewItem.
type NewItemParams struct {
	Name                  string
	Brand                 string
	Category              string
	Size                  string
	AcquisitionCost       decimal.Decimal
	AskingPrice           decimal.Decimal
	LowestAcceptablePrice decimal.Decimal
	GoalPrice             decimal.Decimal
	Status                Status
	PaidBy                PaidBy
	DateAdded             time.Time
}

// NewItem constructs a valid Item aggregate with generated ID and current
// timestamps. Status defaults to in-closet; only active statuses are allowed
// at creation (an item cannot be born sold, traded, scammed or refunded).
func NewItem(orgID uuid.UUID, p NewItemParams) (*Item, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: org id must be set", domain.ErrInvalidItemState)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", domain.ErrInvalidItemState)
	}

	status := p.Status
	if status == "" {
		status = StatusInCloset
	}
	if !status.IsActive() {
		return nil, fmt.Errorf("%w: initial status %q is not an active status", domain.ErrInvalidItemState, status)
	}

	if _, err := ParsePaidBy(string(p.PaidBy)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidItemState, err)
	}

	if err := requireNonNegative("acquisition cost", p.AcquisitionCost); err != nil {
		return nil, err
	}
	for name, amount := range map[string]decimal.Decimal{
		"asking price":            p.AskingPrice,
		"lowest acceptable price": p.LowestAcceptablePrice,
		"goal price":              p.GoalPrice,
	} {
		if err := requireNonNegative(name, amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	dateAdded := p.DateAdded
	if dateAdded.IsZero() {
		dateAdded = now
	}

	return &Item{
		ID:                    uuid.New(),
		OrgID:                 orgID,
		Name:                  p.Name,
		Brand:                 p.Brand,
		Category:              p.Category,
		Size:                  p.Size,
		AcquisitionCost:       p.AcquisitionCost,
		AskingPrice:           p.AskingPrice,
		LowestAcceptablePrice: p.LowestAcceptablePrice,
		GoalPrice:             p.GoalPrice,
		Status:                status,
		PaidBy:                p.PaidBy,
		DateAdded:             dateAdded,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// MarkSold transitions the item to sold with the given sale price and date.
// A second sale of an already-sold item is reported as ErrItemAlreadySold so
// callers can deduplicate resubmitted requests instead of double-crediting.
func (i *Item) MarkSold(salePrice decimal.Decimal, soldAt time.Time) error {
	if i.Status == StatusSold {
		return domain.ErrItemAlreadySold
	}
	if i.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot sell an item in status %q", domain.ErrInvalidTransition, i.Status)
	}
	if salePrice.IsNegative() {
		return fmt.Errorf("%w: sale price must not be negative", domain.ErrInvalidItemState)
	}

	if soldAt.IsZero() {
		soldAt = time.Now().UTC()
	}
	i.Status = StatusSold
	i.SalePrice = salePrice
	i.DateSold = &soldAt
	i.touch()
	return nil
}

// MarkTraded transitions the item to traded against another item.
// cashDifference is signed: positive = cash paid out, negative = cash received.
// The referenced item is a relation only; no ownership is implied.
func (i *Item) MarkTraded(tradedForItemID uuid.UUID, cashDifference decimal.Decimal) error {
	if i.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot trade an item in status %q", domain.ErrInvalidTransition, i.Status)
	}

	i.Status = StatusTraded
	i.TradedForItemID = uuid.NullUUID{UUID: tradedForItemID, Valid: tradedForItemID != uuid.Nil}
	i.TradeCashDifference = cashDifference
	now := time.Now().UTC()
	i.DateSold = &now
	i.touch()
	return nil
}

// ChangeStatus applies a plain status change (relabeling, refund, scam,
// archive, un-sell). Cash effects are decided separately by the transition
// policy; this only enforces that the target status is known.
func (i *Item) ChangeStatus(next Status) error {
	if _, err := ParseStatus(string(next)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
	}
	i.Status = next
	i.touch()
	return nil
}

// TagConvention marks the item active in a convention event and latches the
// historical flag.
func (i *Item) TagConvention() {
	i.InConvention = true
	i.EverInConvention = true
	i.touch()
}

// UntagConvention releases the item from the active event. The historical
// latch stays set.
func (i *Item) UntagConvention() {
	i.InConvention = false
	i.touch()
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now().UTC()
}

func requireNonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", domain.ErrInvalidItemState, name, d)
	}
	return nil
}
