// Package notification turns committed defect activity into in-app
// notifications. Dispatch is asynchronous on the notify pool; a failed
// notification is logged and dropped, it never fails the mutation that
// triggered it.
package notification

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"defectdesk.io/desk/internal/domain"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/pkg/worker"
	"defectdesk.io/desk/internal/repository"
)

// Dispatcher fans out notifications after defect activity commits.
type Dispatcher struct {
	store *repository.Store
	pools *worker.Pools
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store *repository.Store, pools *worker.Pools) *Dispatcher {
	return &Dispatcher{store: store, pools: pools}
}

// DefectCreated notifies the initial assignee, if any.
func (d *Dispatcher) DefectCreated(snap domain.DefectSnapshot, actorID int64) {
	if snap.AssigneeID == nil || *snap.AssigneeID == actorID {
		return
	}
	d.dispatch(repository.Notification{
		RecipientID: *snap.AssigneeID,
		SenderID:    &actorID,
		DefectID:    &snap.ID,
		Title:       fmt.Sprintf("Вам назначен дефект %s", snap.Number),
		Message:     snap.Title,
		Type:        repository.NotifyDefectAssigned,
	})
}

// DefectUpdated inspects a committed mutation plan and notifies the parties
// each applied change concerns: a reassignment notifies the new assignee, a
// status change notifies reporter and assignee.
func (d *Dispatcher) DefectUpdated(snap domain.DefectSnapshot, plan *domain.MutationPlan) {
	if change, ok := plan.Applied[domain.FieldAssignee]; ok && change.New != nil {
		if id, ok := parseID(*change.New); ok && id != plan.ActorID {
			d.dispatch(repository.Notification{
				RecipientID: id,
				SenderID:    &plan.ActorID,
				DefectID:    &snap.ID,
				Title:       fmt.Sprintf("Вам назначен дефект %s", snap.Number),
				Message:     snap.Title,
				Type:        repository.NotifyDefectAssigned,
			})
		}
	}

	change, ok := plan.Applied[domain.FieldStatus]
	if !ok {
		return
	}
	msg := fmt.Sprintf("Статус дефекта %s изменен", snap.Number)
	if change.Old != nil && change.New != nil {
		msg = fmt.Sprintf("Статус дефекта %s: %s -> %s", snap.Number, *change.Old, *change.New)
	}
	for _, recipient := range dedupe(snap.ReporterID, derefID(snap.AssigneeID)) {
		if recipient == plan.ActorID {
			continue
		}
		d.dispatch(repository.Notification{
			RecipientID: recipient,
			SenderID:    &plan.ActorID,
			DefectID:    &snap.ID,
			Title:       "Изменен статус дефекта",
			Message:     msg,
			Type:        repository.NotifyStatusChanged,
		})
	}
}

// CommentAdded notifies the defect's reporter and assignee, minus the author.
func (d *Dispatcher) CommentAdded(snap domain.DefectSnapshot, authorID int64) {
	for _, recipient := range dedupe(snap.ReporterID, derefID(snap.AssigneeID)) {
		if recipient == authorID {
			continue
		}
		d.dispatch(repository.Notification{
			RecipientID: recipient,
			SenderID:    &authorID,
			DefectID:    &snap.ID,
			Title:       fmt.Sprintf("Новый комментарий к дефекту %s", snap.Number),
			Message:     snap.Title,
			Type:        repository.NotifyCommentAdded,
		})
	}
}

// DefectOverdue notifies the assignee and the project's managers that the
// escalation job bumped an overdue defect.
func (d *Dispatcher) DefectOverdue(ctx context.Context, snap domain.DefectSnapshot) {
	recipients := []int64{}
	if snap.AssigneeID != nil {
		recipients = append(recipients, *snap.AssigneeID)
	}
	members, err := d.store.ListProjectMembers(ctx, snap.ProjectID)
	if err != nil {
		logger.Warn("Overdue notification: list project members failed",
			zap.Int64("defect_id", snap.ID), zap.Error(err))
	} else {
		for _, m := range members {
			if m.Role == domain.RoleManager {
				recipients = append(recipients, m.User.ID)
			}
		}
	}
	for _, recipient := range dedupe(recipients...) {
		d.dispatch(repository.Notification{
			RecipientID: recipient,
			DefectID:    &snap.ID,
			Title:       fmt.Sprintf("Просрочен дефект %s", snap.Number),
			Message:     snap.Title,
			Type:        repository.NotifyOverdue,
		})
	}
}

// dispatch queues one notification insert on the notify pool.
func (d *Dispatcher) dispatch(n repository.Notification) {
	err := d.pools.SubmitDetached("notify", func(ctx context.Context) {
		if _, err := d.store.CreateNotification(ctx, n); err != nil {
			logger.Warn("Notification insert failed",
				zap.Int64("recipient_id", n.RecipientID),
				zap.String("type", n.Type),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		logger.Warn("Notification dispatch rejected",
			zap.Int64("recipient_id", n.RecipientID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
	}
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func dedupe(ids ...int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
