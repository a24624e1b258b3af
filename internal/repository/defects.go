package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

const defectSnapshotColumns = `
	d.id, d.number, d.title, d.description, COALESCE(d.location, ''),
	s.name, d.priority_id, d.assignee_id, d.reporter_id, d.due_date,
	d.project_id, d.created_at, d.updated_at`

// GetDefect loads the persisted state of a defect, including its status name,
// as the mutation engine needs it for diffing.
func (s *Store) GetDefect(ctx context.Context, id int64) (domain.DefectSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+defectSnapshotColumns+`
		FROM defects d
		JOIN defect_statuses s ON s.id = d.status_id
		WHERE d.id = $1`, id)

	snap, err := scanDefectSnapshot(row)
	if err != nil {
		if isNoRows(err) {
			return domain.DefectSnapshot{}, apperrors.ErrDefectNotFoundf(id)
		}
		return domain.DefectSnapshot{}, storageErr("get defect", err)
	}
	return snap, nil
}

func scanDefectSnapshot(row pgx.Row) (domain.DefectSnapshot, error) {
	var (
		snap   domain.DefectSnapshot
		status string
	)
	err := row.Scan(
		&snap.ID, &snap.Number, &snap.Title, &snap.Description, &snap.Location,
		&status, &snap.PriorityID, &snap.AssigneeID, &snap.ReporterID, &snap.DueDate,
		&snap.ProjectID, &snap.CreatedAt, &snap.UpdatedAt,
	)
	if err != nil {
		return domain.DefectSnapshot{}, err
	}
	snap.Status = domain.Status(status)
	return snap, nil
}

// DefectFilter narrows ListDefects. Zero values mean "no filter".
type DefectFilter struct {
	ProjectID int64
	Status    string
	Priority  string
	Search    string
	Limit     int
	Offset    int
}

// DefectListItem is one row of the defect list view.
type DefectListItem struct {
	ID           int64
	Number       string
	Title        string
	Status       string
	Priority     string
	Location     string
	AssigneeID   *int64
	AssigneeName *string
	ReporterName string
	DueDate      *time.Time
	CreatedAt    time.Time
}

// ListDefects returns defects newest-first with optional filters.
func (s *Store) ListDefects(ctx context.Context, f DefectFilter) ([]DefectListItem, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT d.id, d.number, d.title, st.name, p.name, COALESCE(d.location, ''),
		       d.assignee_id,
		       CASE WHEN a.id IS NULL THEN NULL
		            ELSE NULLIF(TRIM(COALESCE(a.first_name, '') || ' ' || COALESCE(a.last_name, '')), '')
		       END,
		       COALESCE(NULLIF(TRIM(COALESCE(r.first_name, '') || ' ' || COALESCE(r.last_name, '')), ''), r.username),
		       d.due_date, d.created_at
		FROM defects d
		JOIN defect_statuses st ON st.id = d.status_id
		JOIN priorities p ON p.id = d.priority_id
		JOIN users r ON r.id = d.reporter_id
		LEFT JOIN users a ON a.id = d.assignee_id
		WHERE ($1 = 0 OR d.project_id = $1)
		  AND ($2 = '' OR st.name = $2)
		  AND ($3 = '' OR p.name = $3)
		  AND ($4 = '' OR d.title ILIKE '%' || $4 || '%' OR d.description ILIKE '%' || $4 || '%')
		ORDER BY d.created_at DESC
		LIMIT $5 OFFSET $6`

	rows, err := s.pool.Query(ctx, query, f.ProjectID, f.Status, f.Priority, f.Search, limit, f.Offset)
	if err != nil {
		return nil, storageErr("list defects", err)
	}
	defer rows.Close()

	var out []DefectListItem
	for rows.Next() {
		var it DefectListItem
		if err := rows.Scan(
			&it.ID, &it.Number, &it.Title, &it.Status, &it.Priority, &it.Location,
			&it.AssigneeID, &it.AssigneeName, &it.ReporterName, &it.DueDate, &it.CreatedAt,
		); err != nil {
			return nil, storageErr("scan defect row", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list defects", err)
	}
	return out, nil
}

// CreateDefectParams carries the fields a reporter supplies at creation.
type CreateDefectParams struct {
	ProjectID   int64
	Title       string
	Description string
	Location    string
	PriorityID  int64
	ReporterID  int64
	AssigneeID  *int64
	DueDate     *time.Time
}

// CreateDefect inserts a defect in the initial status, allocates its number
// and writes the create-type change-log entries in one transaction.
func (s *Store) CreateDefect(ctx context.Context, p CreateDefectParams) (domain.DefectSnapshot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.DefectSnapshot{}, storageErr("begin create defect tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('defect_number_seq')`).Scan(&seq); err != nil {
		return domain.DefectSnapshot{}, storageErr("allocate defect number", err)
	}
	number := fmt.Sprintf("DEF-%d-%04d", time.Now().Year(), seq)

	row := tx.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO defects (number, title, description, location, project_id,
			                     status_id, priority_id, reporter_id, assignee_id, due_date)
			SELECT $1, $2, $3, NULLIF($4, ''), $5, st.id, $6, $7, $8, $9
			FROM defect_statuses st
			WHERE st.is_initial
			RETURNING *
		)
		SELECT `+defectSnapshotColumns+`
		FROM ins d
		JOIN defect_statuses s ON s.id = d.status_id`,
		number, p.Title, p.Description, p.Location, p.ProjectID,
		p.PriorityID, p.ReporterID, p.AssigneeID, p.DueDate,
	)
	snap, err := scanDefectSnapshot(row)
	if err != nil {
		return domain.DefectSnapshot{}, storageErr("insert defect", err)
	}

	if err := insertChangeEntries(ctx, tx, domain.CreationEntries(snap, p.ReporterID)); err != nil {
		return domain.DefectSnapshot{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.DefectSnapshot{}, storageErr("commit create defect tx", err)
	}
	return snap, nil
}

// CommitMutation applies a validated mutation plan: all field writes, all
// audit rows and the updated_at bump commit together or not at all.
func (s *Store) CommitMutation(ctx context.Context, plan *domain.MutationPlan) error {
	if plan.NoOp() {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin mutation tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := applyFieldWrites(ctx, tx, plan); err != nil {
		return err
	}
	if err := insertChangeEntries(ctx, tx, plan.Entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit mutation tx", err)
	}
	return nil
}

func applyFieldWrites(ctx context.Context, tx pgx.Tx, plan *domain.MutationPlan) error {
	w := plan.Writes

	// Dynamic SET list keyed by the closed field set; pgx positional args.
	set := "updated_at = $1"
	args := []interface{}{plan.UpdatedAt}
	next := 2

	add := func(expr string, val interface{}) {
		set += fmt.Sprintf(", %s = $%d", expr, next)
		args = append(args, val)
		next++
	}

	if w.Description != nil {
		add("description", *w.Description)
	}
	if w.PriorityID != nil {
		add("priority_id", *w.PriorityID)
	}
	if v, ok := w.AssigneeID.Get(); ok {
		add("assignee_id", v)
	}
	if v, ok := w.DueDate.Get(); ok {
		add("due_date", v)
	}
	if w.Status != nil {
		set += fmt.Sprintf(", status_id = (SELECT id FROM defect_statuses WHERE name = $%d)", next)
		args = append(args, string(*w.Status))
		next++
	}
	if w.ClosedAt != nil {
		add("closed_at", *w.ClosedAt)
	}

	args = append(args, plan.DefectID)
	tag, err := tx.Exec(ctx,
		fmt.Sprintf("UPDATE defects SET %s WHERE id = $%d", set, next), args...)
	if err != nil {
		return storageErr("update defect", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDefectNotFoundf(plan.DefectID)
	}
	return nil
}

// DeleteDefect removes a defect; dependent comments, attachments, change-log
// rows and notifications go with it via ON DELETE CASCADE.
func (s *Store) DeleteDefect(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM defects WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete defect", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDefectNotFoundf(id)
	}
	return nil
}

// ListOverdueDefects returns open defects whose due date has passed and whose
// priority is not already the given one. Used by the overdue escalation job.
func (s *Store) ListOverdueDefects(ctx context.Context, priorityID int64) ([]domain.DefectSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+defectSnapshotColumns+`
		FROM defects d
		JOIN defect_statuses s ON s.id = d.status_id
		WHERE d.due_date < CURRENT_DATE
		  AND NOT s.is_final
		  AND d.priority_id <> $1`, priorityID)
	if err != nil {
		return nil, storageErr("list overdue defects", err)
	}
	defer rows.Close()

	var out []domain.DefectSnapshot
	for rows.Next() {
		snap, err := scanDefectSnapshot(rows)
		if err != nil {
			return nil, storageErr("scan overdue defect", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list overdue defects", err)
	}
	return out, nil
}
