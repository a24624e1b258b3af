package repository

import (
	"context"
	"time"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// Attachment is one stored file reference on a defect.
type Attachment struct {
	ID           int64
	DefectID     int64
	Filename     string
	OriginalName string
	FilePath     string
	FileSize     int64
	ContentType  string
	UploadedBy   int64
	UploadedAt   time.Time
}

// GetAttachment loads a live (non-deleted) attachment scoped to its defect.
func (s *Store) GetAttachment(ctx context.Context, defectID, attachmentID int64) (Attachment, error) {
	var a Attachment
	err := s.pool.QueryRow(ctx, `
		SELECT id, defect_id, filename, original_name, file_path, file_size, content_type, uploaded_by, uploaded_at
		FROM file_attachments
		WHERE id = $1 AND defect_id = $2 AND NOT is_deleted`, attachmentID, defectID).
		Scan(&a.ID, &a.DefectID, &a.Filename, &a.OriginalName, &a.FilePath, &a.FileSize,
			&a.ContentType, &a.UploadedBy, &a.UploadedAt)
	if err != nil {
		if isNoRows(err) {
			return Attachment{}, apperrors.NotFound(apperrors.CodeAttachmentNotFound, "attachment not found")
		}
		return Attachment{}, storageErr("get attachment", err)
	}
	return a, nil
}

// ListAttachments returns a defect's live attachments oldest-first.
func (s *Store) ListAttachments(ctx context.Context, defectID int64) ([]Attachment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, defect_id, filename, original_name, file_path, file_size, content_type, uploaded_by, uploaded_at
		FROM file_attachments
		WHERE defect_id = $1 AND NOT is_deleted
		ORDER BY uploaded_at`, defectID)
	if err != nil {
		return nil, storageErr("list attachments", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.DefectID, &a.Filename, &a.OriginalName, &a.FilePath,
			&a.FileSize, &a.ContentType, &a.UploadedBy, &a.UploadedAt); err != nil {
			return nil, storageErr("scan attachment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list attachments", err)
	}
	return out, nil
}

// CreateAttachment inserts an attachment row together with its change-log
// entry. The file itself is written by the file store before this commits; a
// failed commit leaves an orphan file, never an unaudited row.
func (s *Store) CreateAttachment(ctx context.Context, a Attachment, entry domain.ChangeLogEntry) (Attachment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Attachment{}, storageErr("begin create attachment tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO file_attachments (defect_id, filename, original_name, file_path, file_size, content_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at`,
		a.DefectID, a.Filename, a.OriginalName, a.FilePath, a.FileSize, a.ContentType, a.UploadedBy).
		Scan(&a.ID, &a.UploadedAt)
	if err != nil {
		return Attachment{}, storageErr("insert attachment", err)
	}

	if err := insertChangeEntries(ctx, tx, []domain.ChangeLogEntry{entry}); err != nil {
		return Attachment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Attachment{}, storageErr("commit create attachment tx", err)
	}
	return a, nil
}

// DeleteAttachment soft-deletes an attachment together with its change-log
// entry. The stored file is left for the file store's own cleanup.
func (s *Store) DeleteAttachment(ctx context.Context, defectID, attachmentID int64, entry domain.ChangeLogEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin delete attachment tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE file_attachments SET is_deleted = TRUE
		WHERE id = $1 AND defect_id = $2 AND NOT is_deleted`, attachmentID, defectID)
	if err != nil {
		return storageErr("delete attachment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodeAttachmentNotFound, "attachment not found")
	}

	if err := insertChangeEntries(ctx, tx, []domain.ChangeLogEntry{entry}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit delete attachment tx", err)
	}
	return nil
}
