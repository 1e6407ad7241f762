// Package workflows defines the Temporal workflows for the inventory service.
package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/closetline/services/inventory/application/services"
)

// TaskQueue is the Temporal task queue the inventory worker polls.
const TaskQueue = "inventory"

// SweepInput parameterizes a convention sweep run. A zero EventEnd means the
// run was started by the cron schedule rather than an operator, and each
// item's tag time is used as the event end.
type SweepInput struct {
	EventEnd time.Time `json:"event_end"`
}

// SweepResult reports how many items a sweep run released.
type SweepResult struct {
	Released int `json:"released"`
}

// ConventionSweepWorkflow runs the convention auto-release sweep across all
// orgs. Scheduled via a cron schedule on the Temporal client; also startable
// on demand with an explicit event end.
func ConventionSweepWorkflow(ctx workflow.Context, in SweepInput) (SweepResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})

	var result SweepResult
	var a *SweepActivities
	if err := workflow.ExecuteActivity(ctx, a.SweepAll, in).Get(ctx, &result); err != nil {
		return SweepResult{}, err
	}

	workflow.GetLogger(ctx).Info("convention sweep completed", "released", result.Released)
	return result, nil
}

// SweepActivities holds the dependencies of the sweep workflow's activities.
type SweepActivities struct {
	Inventory *services.InventoryService
}

// SweepAll releases due items for every org. The sweep itself is idempotent,
// so the activity is safe to retry.
func (a *SweepActivities) SweepAll(ctx context.Context, in SweepInput) (SweepResult, error) {
	released, err := a.Inventory.SweepAllOrgs(ctx, in.EventEnd)
	if err != nil {
		return SweepResult{Released: released}, err
	}
	return SweepResult{Released: released}, nil
}
