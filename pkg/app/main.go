package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/closetline/pkg/cache"
	"github.com/ghuser/closetline/pkg/database"
	"github.com/ghuser/closetline/pkg/events"
	"github.com/ghuser/closetline/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to each service's route registration during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler — use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "marking item sold", "item_id", id)
//	app.Logger.ErrorContext(ctx, "ledger write failed", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store // Redis-backed session store; nil in worker process

	// ConventionGraceHours is how long after an event's end date tagged items
	// stay active before the sweep releases them.
	ConventionGraceHours int
}
