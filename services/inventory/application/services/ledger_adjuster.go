package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/events"
	"github.com/ghuser/closetline/pkg/logger"
	invdomain "github.com/ghuser/closetline/services/inventory/domain"
	domainevents "github.com/ghuser/closetline/services/inventory/domain/events"
	"github.com/ghuser/closetline/services/inventory/domain/models"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
)

// maxApplyAttempts bounds version-conflict retries on the capital account.
const maxApplyAttempts = 3

// LedgerAdjuster is the only writer of cash-on-hand. It applies signed deltas
// through the capital repository's conditional update, retrying version
// conflicts with a freshly read account up to maxApplyAttempts before
// surfacing the conflict to the caller.
type LedgerAdjuster struct {
	capital repositories.CapitalRepository
	bus     *events.EventBus
	log     logger.Logger
}

// NewLedgerAdjuster returns a LedgerAdjuster over the given capital repository.
// The bus, when non-nil, receives a LedgerAdjustedEvent per applied delta.
func NewLedgerAdjuster(capital repositories.CapitalRepository, bus *events.EventBus, log logger.Logger) *LedgerAdjuster {
	return &LedgerAdjuster{capital: capital, bus: bus, log: log}
}

// Apply adds the signed amount to the org's cash-on-hand and records the
// matching ledger entry. amount follows ledger convention: positive credits
// the balance, negative debits it.
func (a *LedgerAdjuster) Apply(ctx context.Context, orgID, itemID uuid.UUID, reason models.LedgerReason, amount decimal.Decimal) (*models.CapitalAccount, error) {
	var lastErr error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		acct, err := a.capital.GetOrCreate(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("read capital account: %w", err)
		}

		updated, err := a.capital.ApplyDelta(ctx, orgID, itemID, reason, amount, acct.Version)
		if err == nil {
			a.publishAdjusted(ctx, updated, itemID, reason, amount)
			return updated, nil
		}
		if !errors.Is(err, invdomain.ErrConcurrentUpdateConflict) {
			return nil, err
		}

		lastErr = err
		a.log.WarnContext(ctx, "capital account version conflict, retrying",
			"org_id", orgID,
			"item_id", itemID,
			"attempt", attempt,
			"max_attempts", maxApplyAttempts,
		)
	}
	return nil, fmt.Errorf("apply delta after %d attempts: %w", maxApplyAttempts, lastErr)
}

func (a *LedgerAdjuster) publishAdjusted(ctx context.Context, acct *models.CapitalAccount, itemID uuid.UUID, reason models.LedgerReason, amount decimal.Decimal) {
	if a.bus == nil {
		return
	}
	evt := domainevents.LedgerAdjustedEvent{
		EventID:    uuid.New(),
		Version:    1,
		OrgID:      acct.OrgID,
		ItemID:     itemID,
		Reason:     string(reason),
		Amount:     amount,
		Balance:    acct.CashOnHand,
		OccurredAt: time.Now().UTC(),
	}
	if err := publishJSON(ctx, a.bus, domainevents.TopicLedgerAdjusted, evt.EventID, evt); err != nil {
		// The delta itself is durable; a lost notification only affects observers.
		a.log.WarnContext(ctx, "publish ledger adjusted failed", "error", err, "item_id", itemID)
	}
}
