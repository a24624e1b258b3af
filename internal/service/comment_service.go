package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"defectdesk.io/desk/internal/domain"
	"defectdesk.io/desk/internal/notification"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/repository"
)

// CommentService handles defect comments. Every add and delete leaves a
// change-log entry on the defect.
type CommentService struct {
	store    *repository.Store
	notifier *notification.Dispatcher
}

// NewCommentService creates a CommentService.
func NewCommentService(store *repository.Store, notifier *notification.Dispatcher) *CommentService {
	return &CommentService{store: store, notifier: notifier}
}

// List returns a defect's comments oldest-first.
func (s *CommentService) List(ctx context.Context, actorID, defectID int64) ([]repository.Comment, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, defectID)
}

// Add appends a comment. Engineers and managers only, never on a closed
// defect.
func (s *CommentService) Add(ctx context.Context, actorID, defectID int64, content string) (repository.Comment, error) {
	if content == "" {
		return repository.Comment{}, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"comment content is required")
	}

	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return repository.Comment{}, err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return repository.Comment{}, err
	}
	if snap.Status == domain.StatusClosed {
		return repository.Comment{}, apperrors.ErrDefectFrozenf(defectID)
	}
	if !domain.CanAddComment(role, false) {
		return repository.Comment{}, apperrors.Forbidden(apperrors.CodeForbidden,
			"role cannot comment on defects")
	}

	c, err := s.store.CreateComment(ctx, defectID, actorID, content, domain.ChangeLogEntry{
		DefectID:   defectID,
		ActorID:    actorID,
		FieldName:  domain.LogFieldComment,
		NewValue:   &content,
		ChangeType: domain.ChangeCreate,
	})
	if err != nil {
		return repository.Comment{}, err
	}

	logger.Info("Comment added",
		zap.Int64("defect_id", defectID),
		zap.Int64("comment_id", c.ID),
		zap.Int64("author_id", actorID),
	)
	s.notifier.CommentAdded(snap, actorID)
	return c, nil
}

// Delete removes a comment. Managers delete any comment, engineers only
// their own, and a closed defect is append-only.
func (s *CommentService) Delete(ctx context.Context, actorID, defectID, commentID int64) error {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return err
	}
	c, err := s.store.GetComment(ctx, defectID, commentID)
	if err != nil {
		return err
	}
	if snap.Status == domain.StatusClosed {
		return apperrors.ErrDefectFrozenf(defectID)
	}
	if !domain.CanDeleteComment(role, actorID, c.AuthorID, false) {
		return apperrors.Forbidden(apperrors.CodeForbidden, "role cannot delete this comment")
	}

	old := strconv.FormatInt(commentID, 10)
	if err := s.store.DeleteComment(ctx, defectID, commentID, domain.ChangeLogEntry{
		DefectID:   defectID,
		ActorID:    actorID,
		FieldName:  domain.LogFieldComment,
		OldValue:   &old,
		ChangeType: domain.ChangeDelete,
	}); err != nil {
		return err
	}

	logger.Info("Comment deleted",
		zap.Int64("defect_id", defectID),
		zap.Int64("comment_id", commentID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
