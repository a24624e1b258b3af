package repository

import (
	"context"
	"time"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// User is an account row. PasswordHash is only populated by the auth lookup.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// GetUserByUsername loads an active user with credentials for login.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       password_hash, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return User{}, apperrors.NotFound(apperrors.CodeUserNotFound, "user not found")
		}
		return User{}, storageErr("get user by username", err)
	}
	return u, nil
}

// GetUser loads an active user by id, without credentials.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       is_active, created_at
		FROM users
		WHERE id = $1 AND is_active`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return User{}, apperrors.NotFound(apperrors.CodeUserNotFound, "user not found")
		}
		return User{}, storageErr("get user", err)
	}
	return u, nil
}

// SystemActorID returns the seeded system user's id. Job-initiated changes
// are audited under this actor.
func (s *Store) SystemActorID(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM users WHERE username = 'system'`).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, apperrors.NotFound(apperrors.CodeUserNotFound, "system user not seeded")
		}
		return 0, storageErr("get system actor", err)
	}
	return id, nil
}

// GetUserRoleInProject resolves the caller's role for a project. Every
// permission decision starts here; a user without a role row gets
// NO_PROJECT_ROLE, never a silent default.
func (s *Store) GetUserRoleInProject(ctx context.Context, userID, projectID int64) (domain.Role, error) {
	var role string
	err := s.pool.QueryRow(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND ur.project_id = $2`, userID, projectID).
		Scan(&role)
	if err != nil {
		if isNoRows(err) {
			return "", apperrors.Forbidden(apperrors.CodeNoProjectRole, "user has no role in this project").
				WithParams(map[string]interface{}{"user_id": userID, "project_id": projectID})
		}
		return "", storageErr("get user role", err)
	}
	r := domain.Role(role)
	if !r.Valid() {
		return "", apperrors.Internal(apperrors.CodeNoProjectRole, "unknown role: "+role)
	}
	return r, nil
}

// ProjectMember is a user holding a role in a project. The notification
// triggers use this to find managers.
type ProjectMember struct {
	User User
	Role domain.Role
}

// ListProjectMembers returns all active members of a project.
func (s *Store) ListProjectMembers(ctx context.Context, projectID int64) ([]ProjectMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.username, COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       u.is_active, u.created_at, r.name
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.project_id = $1 AND u.is_active
		ORDER BY u.id`, projectID)
	if err != nil {
		return nil, storageErr("list project members", err)
	}
	defer rows.Close()

	var out []ProjectMember
	for rows.Next() {
		var (
			m    ProjectMember
			role string
		)
		if err := rows.Scan(&m.User.ID, &m.User.Username, &m.User.Email, &m.User.FirstName,
			&m.User.LastName, &m.User.IsActive, &m.User.CreatedAt, &role); err != nil {
			return nil, storageErr("scan project member", err)
		}
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list project members", err)
	}
	return out, nil
}
