package repository

import (
	"context"
	"strconv"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// StatusRef is one defect status reference row.
type StatusRef struct {
	ID          int64
	Name        string
	DisplayName string
	ColorCode   *string
	OrderIndex  int
	IsInitial   bool
	IsFinal     bool
}

// PriorityRef is one priority reference row.
type PriorityRef struct {
	ID           int64
	Name         string
	DisplayName  string
	ColorCode    *string
	UrgencyLevel int
}

// ListStatuses returns the status reference data in board order.
func (s *Store) ListStatuses(ctx context.Context) ([]StatusRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, display_name, color_code, order_index, is_initial, is_final
		FROM defect_statuses
		ORDER BY order_index`)
	if err != nil {
		return nil, storageErr("list statuses", err)
	}
	defer rows.Close()

	var out []StatusRef
	for rows.Next() {
		var r StatusRef
		if err := rows.Scan(&r.ID, &r.Name, &r.DisplayName, &r.ColorCode, &r.OrderIndex, &r.IsInitial, &r.IsFinal); err != nil {
			return nil, storageErr("scan status", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list statuses", err)
	}
	return out, nil
}

// ListPriorities returns the priority reference data by ascending urgency.
func (s *Store) ListPriorities(ctx context.Context) ([]PriorityRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, display_name, color_code, urgency_level
		FROM priorities
		ORDER BY urgency_level`)
	if err != nil {
		return nil, storageErr("list priorities", err)
	}
	defer rows.Close()

	var out []PriorityRef
	for rows.Next() {
		var r PriorityRef
		if err := rows.Scan(&r.ID, &r.Name, &r.DisplayName, &r.ColorCode, &r.UrgencyLevel); err != nil {
			return nil, storageErr("scan priority", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list priorities", err)
	}
	return out, nil
}

// GetPriority loads one priority by id.
func (s *Store) GetPriority(ctx context.Context, id int64) (PriorityRef, error) {
	var r PriorityRef
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, display_name, color_code, urgency_level
		FROM priorities WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.DisplayName, &r.ColorCode, &r.UrgencyLevel)
	if err != nil {
		if isNoRows(err) {
			return PriorityRef{}, apperrors.NotFound(apperrors.CodePriorityNotFound, "priority not found")
		}
		return PriorityRef{}, storageErr("get priority", err)
	}
	return r, nil
}

// GetPriorityByName loads one priority by internal name. The overdue
// escalation job uses it to find the critical priority.
func (s *Store) GetPriorityByName(ctx context.Context, name string) (PriorityRef, error) {
	var r PriorityRef
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, display_name, color_code, urgency_level
		FROM priorities WHERE name = $1`, name).
		Scan(&r.ID, &r.Name, &r.DisplayName, &r.ColorCode, &r.UrgencyLevel)
	if err != nil {
		if isNoRows(err) {
			return PriorityRef{}, apperrors.NotFound(apperrors.CodePriorityNotFound, "priority not found: "+name)
		}
		return PriorityRef{}, storageErr("get priority by name", err)
	}
	return r, nil
}

// GetProjectID checks a project exists and returns its id.
func (s *Store) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var got int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1`, id).Scan(&got)
	if err != nil {
		if isNoRows(err) {
			return 0, apperrors.NotFound(apperrors.CodeProjectNotFound, "project not found")
		}
		return 0, storageErr("get project", err)
	}
	return got, nil
}

// Project is one project row.
type Project struct {
	ID          int64
	Name        string
	Description string
}

// ListUserProjects returns the projects where the user holds any role.
func (s *Store) ListUserProjects(ctx context.Context, userID int64) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.id, p.name, COALESCE(p.description, '')
		FROM projects p
		JOIN user_roles ur ON ur.project_id = p.id
		WHERE ur.user_id = $1
		ORDER BY p.id`, userID)
	if err != nil {
		return nil, storageErr("list user projects", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, storageErr("scan project", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list user projects", err)
	}
	return out, nil
}

// DisplayMaps carries the reference lookups the audit-trail formatter resolves
// raw change-log values through. Keys are the values as stored in the log:
// internal status names, numeric ids rendered as decimal strings.
type DisplayMaps struct {
	Statuses   map[string]string
	Priorities map[string]string
	Users      map[string]string
}

// LoadDisplayMaps loads every display name the formatter may need for a
// project's feed in three queries. Reference tables are tiny; users are
// restricted to the project's members plus anyone who ever wrote to its log.
func (s *Store) LoadDisplayMaps(ctx context.Context, projectID int64) (DisplayMaps, error) {
	m := DisplayMaps{
		Statuses:   make(map[string]string),
		Priorities: make(map[string]string),
		Users:      make(map[string]string),
	}

	statuses, err := s.ListStatuses(ctx)
	if err != nil {
		return DisplayMaps{}, err
	}
	for _, st := range statuses {
		m.Statuses[st.Name] = st.DisplayName
	}

	priorities, err := s.ListPriorities(ctx)
	if err != nil {
		return DisplayMaps{}, err
	}
	for _, p := range priorities {
		m.Priorities[strconv.FormatInt(p.ID, 10)] = p.DisplayName
	}

	rows, err := s.pool.Query(ctx, `
		SELECT u.id::TEXT,
		       COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), u.username)
		FROM users u
		WHERE u.id IN (SELECT user_id FROM user_roles WHERE project_id = $1)
		   OR u.id IN (
		       SELECT cl.user_id FROM change_logs cl
		       JOIN defects d ON d.id = cl.defect_id
		       WHERE d.project_id = $1)`, projectID)
	if err != nil {
		return DisplayMaps{}, storageErr("load user display names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return DisplayMaps{}, storageErr("scan user display name", err)
		}
		m.Users[id] = name
	}
	if err := rows.Err(); err != nil {
		return DisplayMaps{}, storageErr("load user display names", err)
	}
	return m, nil
}
