package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/closetline/pkg/cache"
	"github.com/ghuser/closetline/pkg/events"
	"github.com/ghuser/closetline/pkg/logger"
	invdomain "github.com/ghuser/closetline/services/inventory/domain"
	domainevents "github.com/ghuser/closetline/services/inventory/domain/events"
	"github.com/ghuser/closetline/services/inventory/domain/models"
	"github.com/ghuser/closetline/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/closetline/services/inventory/domain/services"
)

// InventoryService orchestrates the item lifecycle and its cash effects.
//
// Ordering within a mutation is fixed: the transition is classified and its
// amount validated first (nothing written on validation failure), the item is
// persisted next, and only then is the ledger delta applied. A ledger failure
// after the item write is therefore a detected inconsistency — it is wrapped
// in ErrLedgerWriteFailed, published for the reconciliation worker, and never
// blindly retried.
type InventoryService struct {
	items     repositories.ItemRepository
	ledger    *LedgerAdjuster
	itemCache *pkgcache.ItemCache
	summaries *pkgcache.SummaryCache
	bus       *events.EventBus
	log       logger.Logger

	// conventionGrace is how long after an event's end tagged items stay active.
	conventionGrace time.Duration
}

// NewInventoryService wires the service with its repositories, caches and bus.
func NewInventoryService(
	items repositories.ItemRepository,
	ledger *LedgerAdjuster,
	itemCache *pkgcache.ItemCache,
	summaries *pkgcache.SummaryCache,
	bus *events.EventBus,
	log logger.Logger,
	conventionGrace time.Duration,
) *InventoryService {
	if conventionGrace <= 0 {
		conventionGrace = domainsvcs.DefaultReleaseGrace
	}
	return &InventoryService{
		items:           items,
		ledger:          ledger,
		itemCache:       itemCache,
		summaries:       summaries,
		bus:             bus,
		log:             log,
		conventionGrace: conventionGrace,
	}
}

// CreateItem validates and persists a new item. A shared-paid acquisition
// deducts its cost from cash-on-hand; partner-funded ones are financially
// silent.
func (s *InventoryService) CreateItem(ctx context.Context, orgID uuid.UUID, p models.NewItemParams) (*models.Item, error) {
	item, err := models.NewItem(orgID, p)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	effect := domainsvcs.ClassifyCreation(item.PaidBy)
	if _, err := domainsvcs.CashDelta(effect, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	if err := s.applyEffect(ctx, item, effect); err != nil {
		return item, err
	}

	s.invalidate(ctx, item)
	return item, nil
}

// UpdateItemParams carries a partial update; nil fields are left unchanged.
// PaidBy is deliberately absent: changing who funded an acquisition after the
// fact would orphan the ledger entry written at creation.
type UpdateItemParams struct {
	Name                  *string
	Brand                 *string
	Category              *string
	Size                  *string
	AcquisitionCost       *decimal.Decimal
	AskingPrice           *decimal.Decimal
	LowestAcceptablePrice *decimal.Decimal
	GoalPrice             *decimal.Decimal
	SalePrice             *decimal.Decimal
	Status                *models.Status
	DateSold              *time.Time
}

// UpdateItem applies a partial update. The stored item is the previous
// snapshot the status transition is classified against; the resulting ledger
// effect (refund restore, sale revenue, trade delta) is applied after the item
// write. Relabeling transitions carry no effect.
func (s *InventoryService) UpdateItem(ctx context.Context, orgID, id uuid.UUID, p UpdateItemParams) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	prevStatus := item.Status

	if err := applyPatch(item, p); err != nil {
		return nil, err
	}

	effect := domainsvcs.EffectNone
	if p.Status != nil && *p.Status != prevStatus {
		effect = domainsvcs.Classify(prevStatus, *p.Status, item.PaidBy)
		if _, err := domainsvcs.CashDelta(effect, item); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if err := s.applyEffect(ctx, item, effect); err != nil {
		return item, err
	}

	s.invalidate(ctx, item)
	return item, nil
}

func applyPatch(item *models.Item, p UpdateItemParams) error {
	if p.Name != nil {
		if *p.Name == "" {
			return fmt.Errorf("%w: item name must not be empty", invdomain.ErrInvalidItemState)
		}
		item.Name = *p.Name
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Size != nil {
		item.Size = *p.Size
	}
	for name, fld := range map[string]struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		"acquisition cost":        {p.AcquisitionCost, &item.AcquisitionCost},
		"asking price":            {p.AskingPrice, &item.AskingPrice},
		"lowest acceptable price": {p.LowestAcceptablePrice, &item.LowestAcceptablePrice},
		"goal price":              {p.GoalPrice, &item.GoalPrice},
		"sale price":              {p.SalePrice, &item.SalePrice},
	} {
		if fld.src == nil {
			continue
		}
		if fld.src.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", invdomain.ErrInvalidItemState, name)
		}
		*fld.dst = *fld.src
	}
	if p.DateSold != nil {
		t := *p.DateSold
		item.DateSold = &t
	}
	if p.Status != nil {
		if err := item.ChangeStatus(*p.Status); err != nil {
			return err
		}
	}
	return nil
}

// MarkSold transitions an item to sold for salePrice and credits the revenue.
// Selling an already-sold item fails with ErrItemAlreadySold and writes
// nothing — the dedup hook for resubmitted requests.
func (s *InventoryService) MarkSold(ctx context.Context, orgID, id uuid.UUID, salePrice decimal.Decimal, soldAt time.Time) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	prevStatus := item.Status

	if err := item.MarkSold(salePrice, soldAt); err != nil {
		return nil, err
	}

	effect := domainsvcs.Classify(prevStatus, models.StatusSold, item.PaidBy)
	if _, err := domainsvcs.CashDelta(effect, item); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.publishSold(ctx, item)

	if err := s.applyEffect(ctx, item, effect); err != nil {
		return item, err
	}

	s.invalidate(ctx, item)
	return item, nil
}

// MarkTraded transitions an item to traded. cashDifference is signed:
// positive = cash paid out on top, negative = cash received. The ledger
// applies the negation, so received cash credits the balance.
func (s *InventoryService) MarkTraded(ctx context.Context, orgID, id, tradedForItemID uuid.UUID, cashDifference decimal.Decimal) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	prevStatus := item.Status

	if err := item.MarkTraded(tradedForItemID, cashDifference); err != nil {
		return nil, err
	}

	effect := domainsvcs.Classify(prevStatus, models.StatusTraded, item.PaidBy)

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.publishTraded(ctx, item)

	if err := s.applyEffect(ctx, item, effect); err != nil {
		return item, err
	}

	s.invalidate(ctx, item)
	return item, nil
}

// ToggleConvention sets the item's active-in-event flag. Activating also sets
// the historical latch; deactivating leaves the latch untouched, always.
func (s *InventoryService) ToggleConvention(ctx context.Context, orgID, id uuid.UUID, active bool) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if active {
		item.TagConvention()
	} else {
		item.UntagConvention()
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.invalidate(ctx, item)
	return item, nil
}

// GetByID retrieves an item using a read-through cache pattern:
//  1. Check Redis first.
//  2. On miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *InventoryService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	if s.itemCache != nil {
		if cached, err := s.itemCache.Get(ctx, orgID, id); err == nil {
			return cached, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "item cache read failed", "error", err, "item_id", id)
		}
	}

	item, err := s.items.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.itemCache != nil {
		go func() {
			_ = s.itemCache.Set(context.Background(), item)
		}()
	}

	return item, nil
}

// List returns a paginated slice of the org's items plus total count.
func (s *InventoryService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.items.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// Delete removes an item. Deletion is financially silent: even a shared-paid,
// non-refunded purchase leaves cash-on-hand untouched when deleted.
func (s *InventoryService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	exists, err := s.items.Exists(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if !exists {
		return invdomain.ErrItemNotFound
	}
	if err := s.items.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if s.itemCache != nil {
		_ = s.itemCache.Delete(context.Background(), orgID, id)
	}
	if s.summaries != nil {
		_ = s.summaries.Invalidate(context.Background(), orgID)
	}
	return nil
}

// GetFinancialSummary derives the summary from the full item set. The result
// is cached in Redis and invalidated on every item mutation, so a stale
// summary can never outlive the write that changed its inputs.
func (s *InventoryService) GetFinancialSummary(ctx context.Context, orgID uuid.UUID) (models.FinancialSummary, error) {
	if s.summaries != nil {
		if cached, err := s.summaries.Get(ctx, orgID); err == nil {
			return *cached, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "summary cache read failed", "error", err, "org_id", orgID)
		}
	}

	items, err := s.items.FindAll(ctx, orgID)
	if err != nil {
		return models.FinancialSummary{}, fmt.Errorf("load items: %w", err)
	}
	summary := domainsvcs.Summarize(items)

	if s.summaries != nil {
		go func() {
			_ = s.summaries.Set(context.Background(), orgID, &summary)
		}()
	}
	return summary, nil
}

// GetCapital returns the org's capital account, creating it on first use.
func (s *InventoryService) GetCapital(ctx context.Context, orgID uuid.UUID) (*models.CapitalAccount, error) {
	return s.ledger.capital.GetOrCreate(ctx, orgID)
}

// AdjustInvestments sets the partner investment balances. Cash-on-hand cannot
// be set through this path.
func (s *InventoryService) AdjustInvestments(ctx context.Context, orgID uuid.UUID, partnerA, partnerB decimal.Decimal) (*models.CapitalAccount, error) {
	if partnerA.IsNegative() || partnerB.IsNegative() {
		return nil, fmt.Errorf("%w: investments must not be negative", invdomain.ErrInvalidItemState)
	}
	if _, err := s.ledger.capital.GetOrCreate(ctx, orgID); err != nil {
		return nil, fmt.Errorf("read capital account: %w", err)
	}
	acct, err := s.ledger.capital.AdjustInvestments(ctx, orgID, partnerA, partnerB)
	if err != nil {
		return nil, fmt.Errorf("adjust investments: %w", err)
	}
	return acct, nil
}

// ListLedger returns the org's ledger entries, newest first.
func (s *InventoryService) ListLedger(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.LedgerEntry, int, error) {
	entries, total, err := s.ledger.capital.ListEntries(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, total, nil
}

// ReconcileLedger cross-checks the running balance against the fold of all
// ledger entries. Run after a reported ledger inconsistency or on demand.
func (s *InventoryService) ReconcileLedger(ctx context.Context, orgID uuid.UUID) (*models.LedgerReconciliation, error) {
	acct, err := s.ledger.capital.GetOrCreate(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("read capital account: %w", err)
	}
	sum, err := s.ledger.capital.SumEntries(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("sum ledger entries: %w", err)
	}
	return &models.LedgerReconciliation{
		OrgID:      orgID,
		CashOnHand: acct.CashOnHand,
		EntrySum:   sum,
		Consistent: acct.CashOnHand.Equal(sum),
		CheckedAt:  time.Now().UTC(),
	}, nil
}

// RunConventionSweep releases the org's items whose event has been over for
// longer than the configured grace. Idempotent: untagging an already-released
// item is a no-op, and the historical latch is never touched. Returns the
// items released by this run.
//
// A zero eventEnd means no explicit event end was supplied (the scheduled
// sweep); each item's last update time, which is when it was tagged, stands
// in for the event end.
func (s *InventoryService) RunConventionSweep(ctx context.Context, orgID uuid.UUID, eventEnd time.Time) ([]*models.Item, error) {
	tagged, err := s.items.FindInConvention(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("find tagged items: %w", err)
	}

	now := time.Now().UTC()
	var released []*models.Item
	for _, item := range tagged {
		end := eventEnd
		if end.IsZero() {
			end = item.UpdatedAt
		}
		if !domainsvcs.DueForRelease(item, end, s.conventionGrace, now) {
			continue
		}
		item.UntagConvention()
		if err := s.items.Update(ctx, item); err != nil {
			return released, fmt.Errorf("release item %s: %w", item.ID, err)
		}
		if s.itemCache != nil {
			_ = s.itemCache.Delete(ctx, orgID, item.ID)
		}
		released = append(released, item)
	}

	if len(released) > 0 {
		s.log.InfoContext(ctx, "convention sweep released items",
			"org_id", orgID, "released", len(released), "event_end", eventEnd)
	}
	return released, nil
}

// SweepAllOrgs runs the convention sweep for every org with items. The
// scheduled workflow activity calls this.
func (s *InventoryService) SweepAllOrgs(ctx context.Context, eventEnd time.Time) (int, error) {
	orgIDs, err := s.items.ListOrgIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orgs: %w", err)
	}
	released := 0
	for _, orgID := range orgIDs {
		items, err := s.RunConventionSweep(ctx, orgID, eventEnd)
		released += len(items)
		if err != nil {
			return released, err
		}
	}
	return released, nil
}

// applyEffect applies the classified ledger effect for an already-persisted
// item. Zero-amount deltas (a pure like-for-like swap) write nothing.
func (s *InventoryService) applyEffect(ctx context.Context, item *models.Item, effect domainsvcs.TransitionEffect) error {
	reason, ok := domainsvcs.LedgerReason(effect)
	if !ok {
		return nil
	}
	amount, err := domainsvcs.CashDelta(effect, item)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	if _, err := s.ledger.Apply(ctx, item.OrgID, item.ID, reason, amount); err != nil {
		s.log.ErrorContext(ctx, "ledger write failed after item write",
			"org_id", item.OrgID,
			"item_id", item.ID,
			"reason", reason,
			"amount", amount,
			"error", err,
		)
		s.publishInconsistency(ctx, item, reason, amount, err)
		return fmt.Errorf("%w: %v", invdomain.ErrLedgerWriteFailed, err)
	}
	return nil
}

func (s *InventoryService) publishSold(ctx context.Context, item *models.Item) {
	if s.bus == nil {
		return
	}
	soldAt := time.Now().UTC()
	if item.DateSold != nil {
		soldAt = *item.DateSold
	}
	evt := domainevents.ItemSoldEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     item.ID,
		OrgID:      item.OrgID,
		SalePrice:  item.SalePrice,
		SoldAt:     soldAt,
		OccurredAt: time.Now().UTC(),
	}
	if err := publishJSON(ctx, s.bus, domainevents.TopicItemSold, evt.EventID, evt); err != nil {
		s.log.WarnContext(ctx, "publish item sold failed", "error", err, "item_id", item.ID)
	}
}

func (s *InventoryService) publishTraded(ctx context.Context, item *models.Item) {
	if s.bus == nil {
		return
	}
	evt := domainevents.ItemTradedEvent{
		EventID:         uuid.New(),
		Version:         1,
		ItemID:          item.ID,
		OrgID:           item.OrgID,
		TradedForItemID: item.TradedForItemID.UUID,
		CashDifference:  item.TradeCashDifference,
		OccurredAt:      time.Now().UTC(),
	}
	if err := publishJSON(ctx, s.bus, domainevents.TopicItemTraded, evt.EventID, evt); err != nil {
		s.log.WarnContext(ctx, "publish item traded failed", "error", err, "item_id", item.ID)
	}
}

func (s *InventoryService) publishInconsistency(ctx context.Context, item *models.Item, reason models.LedgerReason, amount decimal.Decimal, cause error) {
	if s.bus == nil {
		return
	}
	evt := domainevents.LedgerInconsistencyEvent{
		EventID:    uuid.New(),
		Version:    1,
		OrgID:      item.OrgID,
		ItemID:     item.ID,
		Reason:     string(reason),
		Amount:     amount,
		Cause:      cause.Error(),
		OccurredAt: time.Now().UTC(),
	}
	if err := publishJSON(ctx, s.bus, domainevents.TopicLedgerInconsistency, evt.EventID, evt); err != nil {
		// Last line of defense is the structured error log emitted by applyEffect.
		s.log.ErrorContext(ctx, "publish ledger inconsistency failed", "error", err, "item_id", item.ID)
	}
}

// invalidate drops the caches touched by an item mutation.
func (s *InventoryService) invalidate(ctx context.Context, item *models.Item) {
	if s.itemCache != nil {
		_ = s.itemCache.Delete(ctx, item.OrgID, item.ID)
	}
	if s.summaries != nil {
		_ = s.summaries.Invalidate(ctx, item.OrgID)
	}
}

// publishJSON marshals evt and publishes it on topic with the event id in
// metadata for consumer-side deduplication.
func publishJSON(ctx context.Context, bus *events.EventBus, topic string, eventID uuid.UUID, evt any) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", eventID.String())
	msg.Metadata.Set("event_version", "1")
	return bus.Publish(ctx, topic, msg)
}
