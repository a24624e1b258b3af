package domain

import (
	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// The status transition graph:
//
//	new → in_progress → review → closed
//	new, in_progress → cancelled
//
// closed and cancelled are terminal. Equal current/requested status is an
// idempotent no-op. cancelled is deliberately not reachable from review.

type transition struct {
	from, to Status
}

// transitionRoles maps each legal edge to the roles allowed to trigger it.
var transitionRoles = map[transition][]Role{
	{StatusNew, StatusInProgress}:       {RoleEngineer, RoleManager},
	{StatusInProgress, StatusReview}:    {RoleEngineer, RoleManager},
	{StatusReview, StatusClosed}:        {RoleManager},
	{StatusNew, StatusCancelled}:        {RoleManager},
	{StatusInProgress, StatusCancelled}: {RoleManager},
}

// ValidateTransition checks whether role may move a defect from current to
// requested. Equal statuses succeed as a no-op. Supervisors may never change
// status. An edge missing from the graph fails with ILLEGAL_TRANSITION; an
// existing edge the role may not trigger fails with FORBIDDEN.
func ValidateTransition(current, requested Status, role Role) error {
	if current == requested {
		return nil
	}
	if role == RoleSupervisor {
		return apperrors.Forbidden(apperrors.CodeForbidden, "supervisors cannot change defect status")
	}

	roles, ok := transitionRoles[transition{from: current, to: requested}]
	if !ok {
		return apperrors.ErrIllegalTransitionf(string(current), string(requested))
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return apperrors.Forbidden(apperrors.CodeForbidden,
		"role "+string(role)+" cannot move defect from "+string(current)+" to "+string(requested))
}

// NextStatuses returns the statuses role may move a defect to from current,
// in graph order. Terminal statuses return nothing.
func NextStatuses(current Status, role Role) []Status {
	order := []Status{StatusInProgress, StatusReview, StatusClosed, StatusCancelled}
	var out []Status
	for _, to := range order {
		roles, ok := transitionRoles[transition{from: current, to: to}]
		if !ok {
			continue
		}
		for _, r := range roles {
			if r == role {
				out = append(out, to)
				break
			}
		}
	}
	return out
}
