// Package service implements DefectDesk application services. Services load
// state, delegate every permission and lifecycle decision to the domain
// package, and commit the result through the repository in one transaction.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"defectdesk.io/desk/internal/domain"
	"defectdesk.io/desk/internal/notification"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/repository"
)

// DefectService orchestrates defect reads and mutations.
type DefectService struct {
	store    *repository.Store
	notifier *notification.Dispatcher
}

// NewDefectService creates a DefectService.
func NewDefectService(store *repository.Store, notifier *notification.Dispatcher) *DefectService {
	return &DefectService{store: store, notifier: notifier}
}

// CreateDefectInput carries the fields a reporter supplies at creation.
type CreateDefectInput struct {
	ProjectID   int64
	Title       string
	Description string
	Location    string
	PriorityID  int64
	AssigneeID  *int64
	DueDate     *time.Time
}

// Create registers a new defect in the initial status. Engineers and managers
// may report; the create-type audit rows commit with the row itself.
func (s *DefectService) Create(ctx context.Context, actorID int64, in CreateDefectInput) (domain.DefectSnapshot, error) {
	role, err := s.store.GetUserRoleInProject(ctx, actorID, in.ProjectID)
	if err != nil {
		return domain.DefectSnapshot{}, err
	}
	if role == domain.RoleSupervisor {
		return domain.DefectSnapshot{}, apperrors.Forbidden(apperrors.CodeForbidden,
			"supervisors cannot create defects")
	}

	if in.Title == "" || in.Description == "" {
		return domain.DefectSnapshot{}, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"title and description are required")
	}
	if _, err := s.store.GetPriority(ctx, in.PriorityID); err != nil {
		return domain.DefectSnapshot{}, err
	}

	snap, err := s.store.CreateDefect(ctx, repository.CreateDefectParams{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		PriorityID:  in.PriorityID,
		ReporterID:  actorID,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return domain.DefectSnapshot{}, err
	}

	logger.Info("Defect created",
		zap.Int64("defect_id", snap.ID),
		zap.String("number", snap.Number),
		zap.Int64("reporter_id", actorID),
	)
	s.notifier.DefectCreated(snap, actorID)
	return snap, nil
}

// Get loads one defect, checking the caller holds any role in its project.
func (s *DefectService) Get(ctx context.Context, actorID, defectID int64) (domain.DefectSnapshot, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return domain.DefectSnapshot{}, err
	}
	if _, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID); err != nil {
		return domain.DefectSnapshot{}, err
	}
	return snap, nil
}

// List returns defects matching the filter. Project membership is checked
// when the filter names a project.
func (s *DefectService) List(ctx context.Context, actorID int64, f repository.DefectFilter) ([]repository.DefectListItem, error) {
	if f.ProjectID != 0 {
		if _, err := s.store.GetUserRoleInProject(ctx, actorID, f.ProjectID); err != nil {
			return nil, err
		}
	}
	return s.store.ListDefects(ctx, f)
}

// Update applies a role-gated field update through the mutation engine. The
// whole request succeeds or the whole request fails; on success every applied
// field has its audit row in the same transaction.
func (s *DefectService) Update(ctx context.Context, actorID, defectID int64, req domain.UpdateRequest) (domain.DefectSnapshot, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return domain.DefectSnapshot{}, err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return domain.DefectSnapshot{}, err
	}

	if v, ok := req.Priority.Get(); ok {
		if _, err := s.store.GetPriority(ctx, v); err != nil {
			return domain.DefectSnapshot{}, err
		}
	}
	if v, ok := req.Assignee.Get(); ok && v != nil {
		if _, err := s.store.GetUser(ctx, *v); err != nil {
			return domain.DefectSnapshot{}, err
		}
	}

	plan, err := domain.PlanUpdate(snap, role, actorID, req, time.Now())
	if err != nil {
		return domain.DefectSnapshot{}, err
	}
	if plan.NoOp() {
		return snap, nil
	}

	if err := s.store.CommitMutation(ctx, plan); err != nil {
		return domain.DefectSnapshot{}, err
	}

	logger.Info("Defect updated",
		zap.Int64("defect_id", defectID),
		zap.Int64("actor_id", actorID),
		zap.Int("fields_changed", len(plan.Entries)),
	)
	s.notifier.DefectUpdated(snap, plan)

	return s.store.GetDefect(ctx, defectID)
}

// Delete removes a defect. Managers only; the change log goes with it.
func (s *DefectService) Delete(ctx context.Context, actorID, defectID int64) error {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return err
	}
	if role != domain.RoleManager {
		return apperrors.Forbidden(apperrors.CodeForbidden, "only managers can delete defects")
	}

	if err := s.store.DeleteDefect(ctx, defectID); err != nil {
		return err
	}
	logger.Info("Defect deleted",
		zap.Int64("defect_id", defectID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// ChangeLog returns a defect's audit rows in creation order.
func (s *DefectService) ChangeLog(ctx context.Context, actorID, defectID int64) ([]domain.ChangeLogEntry, error) {
	if _, err := s.Get(ctx, actorID, defectID); err != nil {
		return nil, err
	}
	return s.store.ListDefectChangeLog(ctx, defectID)
}

// NextStatuses returns the statuses the caller may move the defect to.
func (s *DefectService) NextStatuses(ctx context.Context, actorID, defectID int64) ([]domain.Status, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(snap.Status, role), nil
}
