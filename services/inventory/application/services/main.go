package services

import (
	"time"

	"github.com/ghuser/closetline/pkg/app"
	"github.com/ghuser/closetline/pkg/cache"
	"github.com/ghuser/closetline/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Inventory *InventoryService
}

// New wires the inventory application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	items := postgres.NewItemRepository(a.Db, a.EventBus)
	capital := postgres.NewCapitalRepository(a.Db)
	ledger := NewLedgerAdjuster(capital, a.EventBus, a.Logger)

	var (
		itemCache    *cache.ItemCache
		summaryCache *cache.SummaryCache
	)
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
		summaryCache = cache.NewSummaryCache(a.Redis)
	}

	return &Services{
		Inventory: NewInventoryService(
			items,
			ledger,
			itemCache,
			summaryCache,
			a.EventBus,
			a.Logger,
			time.Duration(a.ConventionGraceHours)*time.Hour,
		),
	}
}
