package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

// CapitalRepository is the persistence interface for the capital account and
// its append-only ledger. Implementations must make ApplyDelta conditional on
// the account's version token: a blind read-modify-write of the shared balance
// is exactly the lost-update race this interface exists to close.
type CapitalRepository interface {
	// GetOrCreate returns the org's capital account, creating a zero-balance
	// row on first use.
	GetOrCreate(ctx context.Context, orgID uuid.UUID) (*models.CapitalAccount, error)

	// ApplyDelta atomically adds amount to cash-on-hand and appends the
	// matching ledger entry in the same transaction. The update is guarded by
	// expectedVersion; if another writer bumped the account first, it fails
	// with ErrConcurrentUpdateConflict and nothing is written.
	ApplyDelta(ctx context.Context, orgID, itemID uuid.UUID, reason models.LedgerReason, amount decimal.Decimal, expectedVersion int64) (*models.CapitalAccount, error)

	// AdjustInvestments sets the partner investment balances. Cash-on-hand is
	// deliberately out of reach here; only ApplyDelta writes it.
	AdjustInvestments(ctx context.Context, orgID uuid.UUID, partnerA, partnerB decimal.Decimal) (*models.CapitalAccount, error)

	// ListEntries returns the org's ledger entries, newest first, with the
	// total count.
	ListEntries(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.LedgerEntry, int, error)

	// SumEntries folds the org's ledger entries into a single balance. Used by
	// reconciliation to cross-check the running cash-on-hand value.
	SumEntries(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error)
}
