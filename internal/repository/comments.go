package repository

import (
	"context"
	"time"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// Comment is one defect comment row with the author's display name resolved.
type Comment struct {
	ID         int64
	DefectID   int64
	AuthorID   int64
	AuthorName string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetComment loads a comment scoped to its defect.
func (s *Store) GetComment(ctx context.Context, defectID, commentID int64) (Comment, error) {
	var c Comment
	err := s.pool.QueryRow(ctx, `
		SELECT c.id, c.defect_id, c.author_id,
		       COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), u.username),
		       c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.defect_id = $2`, commentID, defectID).
		Scan(&c.ID, &c.DefectID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return Comment{}, apperrors.NotFound(apperrors.CodeCommentNotFound, "comment not found")
		}
		return Comment{}, storageErr("get comment", err)
	}
	return c, nil
}

// ListComments returns a defect's comments oldest-first.
func (s *Store) ListComments(ctx context.Context, defectID int64) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.defect_id, c.author_id,
		       COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), u.username),
		       c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.defect_id = $1
		ORDER BY c.created_at`, defectID)
	if err != nil {
		return nil, storageErr("list comments", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.DefectID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storageErr("scan comment", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list comments", err)
	}
	return out, nil
}

// CreateComment inserts a comment together with its change-log entry.
func (s *Store) CreateComment(ctx context.Context, defectID, authorID int64, content string, entry domain.ChangeLogEntry) (Comment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Comment{}, storageErr("begin create comment tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c Comment
	err = tx.QueryRow(ctx, `
		INSERT INTO comments (defect_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, defect_id, author_id, content, created_at, updated_at`,
		defectID, authorID, content).
		Scan(&c.ID, &c.DefectID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comment{}, storageErr("insert comment", err)
	}

	if err := insertChangeEntries(ctx, tx, []domain.ChangeLogEntry{entry}); err != nil {
		return Comment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Comment{}, storageErr("commit create comment tx", err)
	}
	return c, nil
}

// DeleteComment removes a comment together with its change-log entry.
func (s *Store) DeleteComment(ctx context.Context, defectID, commentID int64, entry domain.ChangeLogEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin delete comment tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND defect_id = $2`, commentID, defectID)
	if err != nil {
		return storageErr("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodeCommentNotFound, "comment not found")
	}

	if err := insertChangeEntries(ctx, tx, []domain.ChangeLogEntry{entry}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit delete comment tx", err)
	}
	return nil
}
