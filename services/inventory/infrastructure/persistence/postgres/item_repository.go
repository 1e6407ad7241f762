// Package postgres implements the inventory repositories against PostgreSQL.
//
// Queries are written by hand against database/sql over the pgx stdlib
// driver; shopspring decimals and uuid null types scan directly.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/closetline/pkg/database"
	"github.com/ghuser/closetline/pkg/events"
	invdomain "github.com/ghuser/closetline/services/inventory/domain"
	domainevents "github.com/ghuser/closetline/services/inventory/domain/events"
	"github.com/ghuser/closetline/services/inventory/domain/models"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
)

const itemColumns = `id, org_id, name, brand, category, size,
	acquisition_cost, asking_price, lowest_acceptable_price, goal_price, sale_price,
	status, paid_by, date_added, date_sold,
	traded_for_item_id, trade_cash_difference,
	in_convention, ever_in_convention, created_at, updated_at`

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given connection
// pool and event bus. The bus is used to publish ItemCreatedEvents within the
// same transaction as the insert (outbox pattern).
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Save persists a new Item and publishes an ItemCreatedEvent within the same
// transaction.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (`+itemColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
			item.ID, item.OrgID, item.Name, item.Brand, item.Category, item.Size,
			item.AcquisitionCost, item.AskingPrice, item.LowestAcceptablePrice, item.GoalPrice, item.SalePrice,
			item.Status.String(), item.PaidBy.String(), item.DateAdded, nullTime(item.DateSold),
			item.TradedForItemID, item.TradeCashDifference,
			item.InConvention, item.EverInConvention, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return storeErr("insert item", err)
		}

		if r.bus != nil {
			if err := r.publishCreated(tx, item); err != nil {
				return fmt.Errorf("publish item created: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an Item by ID scoped to the given org.
// Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = $1 AND org_id = $2`, id, orgID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrItemNotFound
		}
		return nil, storeErr("query item", err)
	}
	return item, nil
}

// FindByOrgID retrieves a paginated list of items and total count for the org,
// newest first.
func (r *ItemRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE org_id = $1
		ORDER BY date_added DESC, id
		LIMIT $2 OFFSET $3`, orgID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, storeErr("query items", err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE org_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, storeErr("count items", err)
	}
	return items, total, nil
}

// FindAll retrieves every item for the org. This is the full scan the
// financial aggregator derives its summary from.
func (r *ItemRepository) FindAll(ctx context.Context, orgID uuid.UUID) ([]*models.Item, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE org_id = $1 ORDER BY date_added, id`, orgID)
	if err != nil {
		return nil, storeErr("query all items", err)
	}
	return collectItems(rows)
}

// FindInConvention retrieves the org's items currently tagged to a convention.
func (r *ItemRepository) FindInConvention(ctx context.Context, orgID uuid.UUID) ([]*models.Item, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE org_id = $1 AND in_convention ORDER BY date_added, id`, orgID)
	if err != nil {
		return nil, storeErr("query convention items", err)
	}
	return collectItems(rows)
}

// ListOrgIDs returns every org that owns at least one item.
func (r *ItemRepository) ListOrgIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT org_id FROM items`)
	if err != nil {
		return nil, storeErr("query org ids", err)
	}
	defer rows.Close() //nolint:errcheck

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan org id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update persists changes to an existing Item.
//
// ever_in_convention is written through an OR so the column can never flip
// back to false once set, regardless of what the aggregate carries. The latch
// is enforced in the model; this is the storage-level backstop.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE items SET
			name = $3, brand = $4, category = $5, size = $6,
			acquisition_cost = $7, asking_price = $8, lowest_acceptable_price = $9,
			goal_price = $10, sale_price = $11,
			status = $12, paid_by = $13, date_added = $14, date_sold = $15,
			traded_for_item_id = $16, trade_cash_difference = $17,
			in_convention = $18,
			ever_in_convention = ever_in_convention OR $19,
			updated_at = $20
		WHERE id = $1 AND org_id = $2`,
		item.ID, item.OrgID, item.Name, item.Brand, item.Category, item.Size,
		item.AcquisitionCost, item.AskingPrice, item.LowestAcceptablePrice,
		item.GoalPrice, item.SalePrice,
		item.Status.String(), item.PaidBy.String(), item.DateAdded, nullTime(item.DateSold),
		item.TradedForItemID, item.TradeCashDifference,
		item.InConvention, item.EverInConvention, item.UpdatedAt,
	)
	if err != nil {
		return storeErr("update item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invdomain.ErrItemNotFound
	}
	return nil
}

// Delete removes an item by ID scoped to the given org. No ledger adjustment
// accompanies a delete.
func (r *ItemRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM items WHERE id = $1 AND org_id = $2`, id, orgID); err != nil {
		return storeErr("delete item", err)
	}
	return nil
}

// Exists reports whether an item with the given ID exists for the given org.
func (r *ItemRepository) Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND org_id = $2)`, id, orgID).Scan(&exists); err != nil {
		return false, storeErr("check item exists", err)
	}
	return exists, nil
}

func (r *ItemRepository) publishCreated(tx *sql.Tx, item *models.Item) error {
	event := domainevents.ItemCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     item.ID,
		OrgID:      item.OrgID,
		Name:       item.Name,
		Status:     item.Status.String(),
		PaidBy:     item.PaidBy.String(),
		OccurredAt: item.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(domainevents.TopicItemCreated, msg)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	var (
		item     models.Item
		status   string
		paidBy   string
		dateSold sql.NullTime
	)
	if err := s.Scan(
		&item.ID, &item.OrgID, &item.Name, &item.Brand, &item.Category, &item.Size,
		&item.AcquisitionCost, &item.AskingPrice, &item.LowestAcceptablePrice,
		&item.GoalPrice, &item.SalePrice,
		&status, &paidBy, &item.DateAdded, &dateSold,
		&item.TradedForItemID, &item.TradeCashDifference,
		&item.InConvention, &item.EverInConvention, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.Status = models.Status(status)
	item.PaidBy = models.PaidBy(paidBy)
	if dateSold.Valid {
		t := dateSold.Time
		item.DateSold = &t
	}
	return &item, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func collectItems(rows *sql.Rows) ([]*models.Item, error) {
	defer rows.Close() //nolint:errcheck

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storeErr("scan item", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

