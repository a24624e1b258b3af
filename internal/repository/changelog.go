package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"defectdesk.io/desk/internal/domain"
)

func insertChangeEntries(ctx context.Context, tx pgx.Tx, entries []domain.ChangeLogEntry) error {
	for _, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO change_logs (defect_id, user_id, field_name, old_value, new_value, change_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.DefectID, e.ActorID, e.FieldName, e.OldValue, e.NewValue, string(e.ChangeType), createdAt,
		)
		if err != nil {
			return storageErr("insert change log entry", err)
		}
	}
	return nil
}

// ListDefectChangeLog returns a defect's audit rows in creation order, the
// order the replay invariant is defined over.
func (s *Store) ListDefectChangeLog(ctx context.Context, defectID int64) ([]domain.ChangeLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, defect_id, user_id, field_name, old_value, new_value, change_type, created_at
		FROM change_logs
		WHERE defect_id = $1
		ORDER BY id`, defectID)
	if err != nil {
		return nil, storageErr("list change log", err)
	}
	defer rows.Close()

	var out []domain.ChangeLogEntry
	for rows.Next() {
		var (
			e  domain.ChangeLogEntry
			ct string
		)
		if err := rows.Scan(&e.ID, &e.DefectID, &e.ActorID, &e.FieldName, &e.OldValue, &e.NewValue, &ct, &e.CreatedAt); err != nil {
			return nil, storageErr("scan change log entry", err)
		}
		e.ChangeType = domain.ChangeType(ct)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list change log", err)
	}
	return out, nil
}

// ActionRow is one change-log entry joined with the data the actions feed
// displays alongside the formatted phrase.
type ActionRow struct {
	Entry       domain.ChangeLogEntry
	ActorName   *string
	DefectID    int64
	DefectTitle string
}

// ListProjectActions returns the newest change-log rows for a project with
// actor and defect context, newest-first. Duplicate create rows for the same
// defect are collapsed to one, so the feed shows a single "created" action.
func (s *Store) ListProjectActions(ctx context.Context, projectID int64, limit int) ([]ActionRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT cl.id, cl.defect_id, cl.user_id, cl.field_name, cl.old_value, cl.new_value,
		       cl.change_type, cl.created_at,
		       COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), u.username),
		       d.id, d.title
		FROM change_logs cl
		JOIN defects d ON d.id = cl.defect_id
		LEFT JOIN users u ON u.id = cl.user_id
		WHERE d.project_id = $1
		  AND (cl.change_type <> 'create'
		       OR cl.field_name IN ('comment', 'attachment')
		       OR cl.id = (
		          SELECT MIN(c2.id) FROM change_logs c2
		          WHERE c2.defect_id = cl.defect_id
		            AND c2.change_type = 'create'
		            AND c2.field_name NOT IN ('comment', 'attachment')))
		ORDER BY cl.created_at DESC, cl.id DESC
		LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, storageErr("list project actions", err)
	}
	defer rows.Close()

	var out []ActionRow
	for rows.Next() {
		var (
			r  ActionRow
			ct string
		)
		if err := rows.Scan(
			&r.Entry.ID, &r.Entry.DefectID, &r.Entry.ActorID, &r.Entry.FieldName,
			&r.Entry.OldValue, &r.Entry.NewValue, &ct, &r.Entry.CreatedAt,
			&r.ActorName, &r.DefectID, &r.DefectTitle,
		); err != nil {
			return nil, storageErr("scan action row", err)
		}
		r.Entry.ChangeType = domain.ChangeType(ct)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list project actions", err)
	}
	return out, nil
}
