package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Watermill topics published by the inventory context.
const (
	TopicItemCreated = "inventory.item.created"
	TopicItemSold    = "inventory.item.sold"
	TopicItemTraded  = "inventory.item.traded"

	// TopicLedgerAdjusted carries every applied cash delta.
	TopicLedgerAdjusted = "inventory.ledger.adjusted"

	// TopicLedgerInconsistency is published when an item write succeeded but
	// its ledger adjustment did not. The worker consumes it and runs a
	// reconciliation check; it is never silently dropped or blindly retried.
	TopicLedgerInconsistency = "inventory.ledger.inconsistency"
)

// ItemCreatedEvent is published after a new Item is persisted.
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     uuid.UUID `json:"item_id"`
	OrgID      uuid.UUID `json:"org_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	PaidBy     string    `json:"paid_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemSoldEvent is published after an item transitions to sold.
type ItemSoldEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Version    int             `json:"version"`
	ItemID     uuid.UUID       `json:"item_id"`
	OrgID      uuid.UUID       `json:"org_id"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	SoldAt     time.Time       `json:"sold_at"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ItemTradedEvent is published after an item transitions to traded.
// CashDifference is signed: positive = cash paid out, negative = cash received.
type ItemTradedEvent struct {
	EventID         uuid.UUID       `json:"event_id"`
	Version         int             `json:"version"`
	ItemID          uuid.UUID       `json:"item_id"`
	OrgID           uuid.UUID       `json:"org_id"`
	TradedForItemID uuid.UUID       `json:"traded_for_item_id"`
	CashDifference  decimal.Decimal `json:"cash_difference"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// LedgerAdjustedEvent is published after a cash delta is applied to the
// capital account.
type LedgerAdjustedEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Version    int             `json:"version"`
	OrgID      uuid.UUID       `json:"org_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Reason     string          `json:"reason"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// LedgerInconsistencyEvent reports a ledger write that failed after its item
// write already persisted. Consumers trigger reconciliation, not a retry:
// a delta that partially applied would double-adjust if replayed.
type LedgerInconsistencyEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Version    int             `json:"version"`
	OrgID      uuid.UUID       `json:"org_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Reason     string          `json:"reason"`
	Amount     decimal.Decimal `json:"amount"`
	Cause      string          `json:"cause"`
	OccurredAt time.Time       `json:"occurred_at"`
}
