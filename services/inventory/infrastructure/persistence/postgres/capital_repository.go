package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/pkg/database"
	invdomain "github.com/ghuser/closetline/services/inventory/domain"
	"github.com/ghuser/closetline/services/inventory/domain/models"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
)

// CapitalRepository implements repositories.CapitalRepository against
// PostgreSQL. Cash writes are conditional on the account's version column and
// mirror every delta into the append-only ledger_entries table within the
// same transaction, so cash_on_hand always equals the sum of its entries.
type CapitalRepository struct {
	db *database.Database
}

// NewCapitalRepository returns a CapitalRepository backed by the given pool.
func NewCapitalRepository(db *database.Database) *CapitalRepository {
	return &CapitalRepository{db: db}
}

// GetOrCreate returns the org's capital account, inserting a zero-balance row
// on first use.
func (r *CapitalRepository) GetOrCreate(ctx context.Context, orgID uuid.UUID) (*models.CapitalAccount, error) {
	if _, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO capital_accounts (org_id, cash_on_hand, partner_a_investment, partner_b_investment, version, updated_at)
		VALUES ($1, 0, 0, 0, 1, $2)
		ON CONFLICT (org_id) DO NOTHING`, orgID, time.Now().UTC()); err != nil {
		return nil, storeErr("create capital account", err)
	}
	return r.get(ctx, orgID)
}

func (r *CapitalRepository) get(ctx context.Context, orgID uuid.UUID) (*models.CapitalAccount, error) {
	var acct models.CapitalAccount
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT org_id, cash_on_hand, partner_a_investment, partner_b_investment, version, updated_at
		FROM capital_accounts WHERE org_id = $1`, orgID).
		Scan(&acct.OrgID, &acct.CashOnHand, &acct.PartnerAInvestment, &acct.PartnerBInvestment, &acct.Version, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrCapitalAccountNotFound
		}
		return nil, storeErr("query capital account", err)
	}
	return &acct, nil
}

// ApplyDelta adds amount to cash-on-hand, guarded by expectedVersion, and
// appends the matching ledger entry in the same transaction.
//
// The conditional UPDATE is what makes concurrent adjustments safe: two
// writers racing on the same version leave exactly one winner; the loser gets
// ErrConcurrentUpdateConflict with nothing written and retries on a fresh read.
func (r *CapitalRepository) ApplyDelta(ctx context.Context, orgID, itemID uuid.UUID, reason models.LedgerReason, amount decimal.Decimal, expectedVersion int64) (*models.CapitalAccount, error) {
	var acct models.CapitalAccount

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE capital_accounts
			SET cash_on_hand = cash_on_hand + $1,
			    version = version + 1,
			    updated_at = $2
			WHERE org_id = $3 AND version = $4
			RETURNING org_id, cash_on_hand, partner_a_investment, partner_b_investment, version, updated_at`,
			amount, time.Now().UTC(), orgID, expectedVersion).
			Scan(&acct.OrgID, &acct.CashOnHand, &acct.PartnerAInvestment, &acct.PartnerBInvestment, &acct.Version, &acct.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Either the row is missing or another writer bumped the version.
				var exists bool
				if scanErr := tx.QueryRowContext(ctx,
					`SELECT EXISTS(SELECT 1 FROM capital_accounts WHERE org_id = $1)`, orgID).
					Scan(&exists); scanErr != nil {
					return storeErr("check capital account", scanErr)
				}
				if !exists {
					return invdomain.ErrCapitalAccountNotFound
				}
				return invdomain.ErrConcurrentUpdateConflict
			}
			return storeErr("update capital account", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, org_id, item_id, reason, amount, balance, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), orgID, itemID, string(reason), amount, acct.CashOnHand, time.Now().UTC(),
		); err != nil {
			return storeErr("append ledger entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// AdjustInvestments sets the partner investment balances. Cash-on-hand is not
// touched here; ApplyDelta is its only writer.
func (r *CapitalRepository) AdjustInvestments(ctx context.Context, orgID uuid.UUID, partnerA, partnerB decimal.Decimal) (*models.CapitalAccount, error) {
	var acct models.CapitalAccount
	err := r.db.DB().QueryRowContext(ctx, `
		UPDATE capital_accounts
		SET partner_a_investment = $1,
		    partner_b_investment = $2,
		    version = version + 1,
		    updated_at = $3
		WHERE org_id = $4
		RETURNING org_id, cash_on_hand, partner_a_investment, partner_b_investment, version, updated_at`,
		partnerA, partnerB, time.Now().UTC(), orgID).
		Scan(&acct.OrgID, &acct.CashOnHand, &acct.PartnerAInvestment, &acct.PartnerBInvestment, &acct.Version, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrCapitalAccountNotFound
		}
		return nil, storeErr("adjust investments", err)
	}
	return &acct, nil
}

// ListEntries returns the org's ledger entries, newest first, with total count.
func (r *CapitalRepository) ListEntries(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.LedgerEntry, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, org_id, item_id, reason, amount, balance, created_at
		FROM ledger_entries
		WHERE org_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, orgID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, storeErr("query ledger entries", err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []*models.LedgerEntry
	for rows.Next() {
		var (
			e      models.LedgerEntry
			reason string
		)
		if err := rows.Scan(&e.ID, &e.OrgID, &e.ItemID, &reason, &e.Amount, &e.Balance, &e.CreatedAt); err != nil {
			return nil, 0, storeErr("scan ledger entry", err)
		}
		e.Reason = models.LedgerReason(reason)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE org_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, storeErr("count ledger entries", err)
	}
	return entries, total, nil
}

// SumEntries folds the org's ledger into a single balance for reconciliation
// against the running cash_on_hand value.
func (r *CapitalRepository) SumEntries(ctx context.Context, orgID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE org_id = $1`, orgID).Scan(&sum); err != nil {
		return decimal.Zero, storeErr("sum ledger entries", err)
	}
	return sum, nil
}
