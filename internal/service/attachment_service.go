package service

import (
	"context"
	"io"
	"strconv"

	"go.uber.org/zap"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/repository"
)

// AttachmentService handles defect file attachments. Only image content
// types are accepted and the payload is size-capped before any disk write.
type AttachmentService struct {
	store       *repository.Store
	files       FileStore
	maxFileSize int64
}

// NewAttachmentService creates an AttachmentService.
func NewAttachmentService(store *repository.Store, files FileStore, maxFileSize int64) *AttachmentService {
	return &AttachmentService{store: store, files: files, maxFileSize: maxFileSize}
}

// List returns a defect's live attachments.
func (s *AttachmentService) List(ctx context.Context, actorID, defectID int64) ([]repository.Attachment, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID); err != nil {
		return nil, err
	}
	return s.store.ListAttachments(ctx, defectID)
}

// Get loads one attachment for download.
func (s *AttachmentService) Get(ctx context.Context, actorID, defectID, attachmentID int64) (repository.Attachment, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return repository.Attachment{}, err
	}
	if _, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID); err != nil {
		return repository.Attachment{}, err
	}
	return s.store.GetAttachment(ctx, defectID, attachmentID)
}

// UploadInput describes an incoming attachment payload.
type UploadInput struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// Upload validates and stores an attachment. The content-type and size gates
// run before a single byte reaches the file store; the database row and its
// change-log entry commit together after the file is on disk.
func (s *AttachmentService) Upload(ctx context.Context, actorID, defectID int64, in UploadInput) (repository.Attachment, error) {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return repository.Attachment{}, err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return repository.Attachment{}, err
	}
	if snap.Status == domain.StatusClosed {
		return repository.Attachment{}, apperrors.ErrDefectFrozenf(defectID)
	}
	if !domain.CanAddAttachment(role, false) {
		return repository.Attachment{}, apperrors.Forbidden(apperrors.CodeForbidden,
			"role cannot attach files to defects")
	}

	if !domain.IsImageContentType(in.ContentType) {
		return repository.Attachment{}, apperrors.BadRequest(apperrors.CodeUnsupportedFileType,
			"only image attachments are accepted").
			WithParams(map[string]interface{}{"content_type": in.ContentType})
	}
	if in.Size <= 0 || in.Size > s.maxFileSize {
		return repository.Attachment{}, apperrors.BadRequest(apperrors.CodeFileTooLarge,
			"attachment exceeds the size limit").
			WithParams(map[string]interface{}{"size": in.Size, "max": s.maxFileSize})
	}

	// LimitReader guards against a client lying in Content-Length.
	filename, path, err := s.files.Save(in.OriginalName, io.LimitReader(in.Body, s.maxFileSize))
	if err != nil {
		return repository.Attachment{}, apperrors.ErrStorageUnavailable(err)
	}

	a, err := s.store.CreateAttachment(ctx, repository.Attachment{
		DefectID:     defectID,
		Filename:     filename,
		OriginalName: in.OriginalName,
		FilePath:     path,
		FileSize:     in.Size,
		ContentType:  in.ContentType,
		UploadedBy:   actorID,
	}, domain.ChangeLogEntry{
		DefectID:   defectID,
		ActorID:    actorID,
		FieldName:  domain.LogFieldAttachment,
		NewValue:   &in.OriginalName,
		ChangeType: domain.ChangeCreate,
	})
	if err != nil {
		_ = s.files.Remove(path)
		return repository.Attachment{}, err
	}

	logger.Info("Attachment uploaded",
		zap.Int64("defect_id", defectID),
		zap.Int64("attachment_id", a.ID),
		zap.Int64("size", in.Size),
	)
	return a, nil
}

// Delete soft-deletes an attachment. Managers only; the stored file is
// removed best-effort after the row commit.
func (s *AttachmentService) Delete(ctx context.Context, actorID, defectID, attachmentID int64) error {
	snap, err := s.store.GetDefect(ctx, defectID)
	if err != nil {
		return err
	}
	role, err := s.store.GetUserRoleInProject(ctx, actorID, snap.ProjectID)
	if err != nil {
		return err
	}
	a, err := s.store.GetAttachment(ctx, defectID, attachmentID)
	if err != nil {
		return err
	}
	if snap.Status == domain.StatusClosed {
		return apperrors.ErrDefectFrozenf(defectID)
	}
	if !domain.CanDeleteAttachment(role, false) {
		return apperrors.Forbidden(apperrors.CodeForbidden, "only managers can delete attachments")
	}

	old := strconv.FormatInt(attachmentID, 10)
	if err := s.store.DeleteAttachment(ctx, defectID, attachmentID, domain.ChangeLogEntry{
		DefectID:   defectID,
		ActorID:    actorID,
		FieldName:  domain.LogFieldAttachment,
		OldValue:   &old,
		ChangeType: domain.ChangeDelete,
	}); err != nil {
		return err
	}

	if err := s.files.Remove(a.FilePath); err != nil {
		logger.Warn("Attachment file cleanup failed",
			zap.Int64("attachment_id", attachmentID),
			zap.String("path", a.FilePath),
			zap.Error(err),
		)
	}

	logger.Info("Attachment deleted",
		zap.Int64("defect_id", defectID),
		zap.Int64("attachment_id", attachmentID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
