package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CapitalAccount is the single cash record for an org: a running cash-on-hand
// balance plus each partner's invested capital.
//
// CashOnHand is never written directly by callers. Every change goes through
// the ledger adjuster as a signed delta and is mirrored by an append-only
// LedgerEntry, so the balance is always re-derivable as the sum of entries.
// Version is the optimistic concurrency token: conditional updates compare it
// and fail with ErrConcurrentUpdateConflict when another writer got there first.
type CapitalAccount struct {
	OrgID              uuid.UUID
	CashOnHand         decimal.Decimal
	PartnerAInvestment decimal.Decimal
	PartnerBInvestment decimal.Decimal
	Version            int64
	UpdatedAt          time.Time
}

// LedgerReason classifies why a cash delta was applied.
type LedgerReason string

const (
	LedgerReasonAcquisition LedgerReason = "acquisition" // shared purchase deducts cost
	LedgerReasonRefund      LedgerReason = "refund"      // shared purchase cost restored
	LedgerReasonSale        LedgerReason = "sale"        // sale revenue added
	LedgerReasonTrade       LedgerReason = "trade"       // signed trade cash difference
)

// LedgerReconciliation compares the running cash-on-hand value against the
// fold of all ledger entries. The two must agree; a mismatch means a delta
// was applied without its entry (or the reverse) and needs a manual audit.
type LedgerReconciliation struct {
	OrgID      uuid.UUID       `json:"org_id"`
	CashOnHand decimal.Decimal `json:"cash_on_hand"`
	EntrySum   decimal.Decimal `json:"entry_sum"`
	Consistent bool            `json:"consistent"`
	CheckedAt  time.Time       `json:"checked_at"`
}

// LedgerEntry is one immutable row in the append-only cash ledger.
// Amount is signed; Balance is the cash-on-hand value after this entry applied.
type LedgerEntry struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	ItemID    uuid.UUID
	Reason    LedgerReason
	Amount    decimal.Decimal
	Balance   decimal.Decimal
	CreatedAt time.Time
}
