package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/closetline/pkg/app"
	"github.com/ghuser/closetline/pkg/cache"
	"github.com/ghuser/closetline/pkg/config"
	"github.com/ghuser/closetline/pkg/database"
	"github.com/ghuser/closetline/pkg/events"
	"github.com/ghuser/closetline/pkg/logger"
	"github.com/ghuser/closetline/pkg/telemetry"
	pkgworkflows "github.com/ghuser/closetline/pkg/workflows"
	appsvcs "github.com/ghuser/closetline/services/inventory/application/services"
	"github.com/ghuser/closetline/services/inventory/application/workflows"
	invEvents "github.com/ghuser/closetline/services/inventory/domain/events"
)

const sweepScheduleID = "convention-sweep"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := pkgworkflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer temporalClient.Close()

	appConfig := &app.Application{
		Db:                   pool,
		Logger:               log,
		EventBus:             eventBus,
		Redis:                redisClient,
		ConventionGraceHours: cfg.ConventionReleaseGraceHours,
	}
	svcs := appsvcs.New(appConfig)

	if err := registerSubscribers(ctx, appConfig, svcs); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	w := worker.New(temporalClient.Client, workflows.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ConventionSweepWorkflow)
	w.RegisterActivity(&workflows.SweepActivities{Inventory: svcs.Inventory})
	if err := w.Start(); err != nil {
		log.Error("failed to start temporal worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer w.Stop()

	if err := ensureSweepSchedule(ctx, temporalClient, cfg.ConventionSweepCron); err != nil {
		log.Error("failed to create sweep schedule", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("convention sweep scheduled", "cron", cfg.ConventionSweepCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// ensureSweepSchedule creates the cron schedule for the convention sweep
// workflow. An already-existing schedule is fine: the worker is restartable.
func ensureSweepSchedule(ctx context.Context, tc *pkgworkflows.TemporalClient, cron string) error {
	_, err := tc.Client.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: sweepScheduleID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{cron},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        sweepScheduleID + "-run",
			Workflow:  workflows.ConventionSweepWorkflow,
			TaskQueue: workflows.TaskQueue,
			Args:      []any{workflows.SweepInput{}},
		},
	})
	if err != nil && !errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		return err
	}
	return nil
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	topics := map[string]func(context.Context, *message.Message) error{
		invEvents.TopicItemSold:            handleItemSold(a),
		invEvents.TopicItemTraded:          handleItemTraded(a),
		invEvents.TopicLedgerInconsistency: handleLedgerInconsistency(a, svcs),
	}

	registered := make([]string, 0, len(topics))
	for topic, handler := range topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		registered = append(registered, topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", registered)
	return nil
}

// handleItemSold drops the sold item and the org's summary from the Redis
// read model. Handlers must be idempotent — EventBus retries up to 3x on
// failure, and deleting an absent key is a no-op.
func handleItemSold(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invEvents.ItemSoldEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		invalidateCaches(ctx, a, evt.OrgID, evt.ItemID)
		return nil
	}
}

// handleItemTraded mirrors handleItemSold for trade transitions.
func handleItemTraded(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invEvents.ItemTradedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		invalidateCaches(ctx, a, evt.OrgID, evt.ItemID)
		return nil
	}
}

// invalidateCaches is best-effort; the TTL bounds staleness on failure.
func invalidateCaches(ctx context.Context, a *app.Application, orgID, itemID uuid.UUID) {
	if err := cache.NewItemCache(a.Redis).Delete(ctx, orgID, itemID); err != nil {
		a.Logger.WarnContext(ctx, "item cache invalidation failed",
			"item_id", itemID, "error", err)
	}
	if err := cache.NewSummaryCache(a.Redis).Invalidate(ctx, orgID); err != nil {
		a.Logger.WarnContext(ctx, "summary cache invalidation failed",
			"org_id", orgID, "error", err)
	}
	a.Logger.InfoContext(ctx, "cache invalidated after item mutation",
		"item_id", itemID, "org_id", orgID)
}

// handleLedgerInconsistency reacts to a ledger write that failed after its
// item write persisted: it re-derives the balance from the entry log and
// reports the drift. It never replays the delta — a partially-applied
// adjustment would double-count on replay.
func handleLedgerInconsistency(a *app.Application, svcs *appsvcs.Services) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt invEvents.LedgerInconsistencyEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		rec, err := svcs.Inventory.ReconcileLedger(ctx, evt.OrgID)
		if err != nil {
			return err
		}

		if rec.Consistent {
			a.Logger.InfoContext(ctx, "ledger reconciliation clean",
				"org_id", evt.OrgID, "item_id", evt.ItemID, "cause", evt.Cause)
			return nil
		}

		a.Logger.ErrorContext(ctx, "ledger drift detected, manual audit required",
			"org_id", evt.OrgID,
			"item_id", evt.ItemID,
			"cash_on_hand", rec.CashOnHand,
			"entry_sum", rec.EntrySum,
			"cause", evt.Cause,
		)
		sentry.CaptureMessage("ledger drift detected for org " + evt.OrgID.String())
		return nil
	}
}
