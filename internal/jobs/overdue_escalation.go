// Package jobs defines River Queue job types for background processing.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"defectdesk.io/desk/internal/domain"
	"defectdesk.io/desk/internal/notification"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/repository"
)

// criticalPriorityName is the seeded priority overdue defects escalate to.
const criticalPriorityName = "critical"

// OverdueEscalationArgs is a periodic job that bumps open defects past their
// due date to critical priority.
type OverdueEscalationArgs struct{}

// Kind returns the job kind identifier for overdue escalation.
func (OverdueEscalationArgs) Kind() string { return "overdue_escalation" }

// InsertOpts ensures at most one escalation run is enqueued per hour.
func (OverdueEscalationArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: time.Hour,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// OverdueEscalationWorker escalates overdue defects through the regular
// mutation path, so every bump leaves the same audit rows a manual priority
// change would.
type OverdueEscalationWorker struct {
	river.WorkerDefaults[OverdueEscalationArgs]
	store    *repository.Store
	notifier *notification.Dispatcher
}

// NewOverdueEscalationWorker creates the escalation worker.
func NewOverdueEscalationWorker(store *repository.Store, notifier *notification.Dispatcher) *OverdueEscalationWorker {
	return &OverdueEscalationWorker{store: store, notifier: notifier}
}

// Work escalates every overdue open defect not already critical.
func (w *OverdueEscalationWorker) Work(ctx context.Context, _ *river.Job[OverdueEscalationArgs]) error {
	if w == nil || w.store == nil {
		return fmt.Errorf("overdue escalation worker is not initialized")
	}

	actorID, err := w.store.SystemActorID(ctx)
	if err != nil {
		return fmt.Errorf("resolve system actor: %w", err)
	}
	critical, err := w.store.GetPriorityByName(ctx, criticalPriorityName)
	if err != nil {
		return fmt.Errorf("resolve critical priority: %w", err)
	}

	overdue, err := w.store.ListOverdueDefects(ctx, critical.ID)
	if err != nil {
		return fmt.Errorf("list overdue defects: %w", err)
	}

	escalated := 0
	for _, snap := range overdue {
		req := domain.UpdateRequest{Priority: domain.Some(critical.ID)}
		plan, err := domain.PlanUpdate(snap, domain.RoleManager, actorID, req, time.Now())
		if err != nil {
			logger.Warn("Overdue escalation skipped",
				zap.Int64("defect_id", snap.ID),
				zap.Error(err),
			)
			continue
		}
		if err := w.store.CommitMutation(ctx, plan); err != nil {
			logger.Warn("Overdue escalation commit failed",
				zap.Int64("defect_id", snap.ID),
				zap.Error(err),
			)
			continue
		}
		escalated++
		if w.notifier != nil {
			w.notifier.DefectOverdue(ctx, snap)
		}
	}

	logger.Info("Overdue escalation completed",
		zap.Int("candidates", len(overdue)),
		zap.Int("escalated", escalated),
	)
	return nil
}
