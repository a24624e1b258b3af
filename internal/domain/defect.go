// Package domain implements the defect lifecycle core: the role/field
// permission matrix, the status transition graph, the mutation engine and the
// change-log formatter. Everything in this package is pure and stateless;
// persistence and transport live elsewhere.
package domain

import (
	"strconv"
	"time"
)

// Status is the lifecycle stage of a defect.
type Status string

// Lifecycle stages. closed and cancelled are terminal.
const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReview, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further status transitions.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Role is a user's per-project permission class.
type Role string

// Project roles. Supervisor is read-only on defects.
const (
	RoleEngineer   Role = "engineer"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
)

// Valid reports whether r is a known project role.
func (r Role) Valid() bool {
	return r == RoleEngineer || r == RoleManager || r == RoleSupervisor
}

// Field identifies a mutable defect field. The set is closed: the permission
// matrix, the mutation engine and the formatter all switch over these
// constants, so an unhandled field is a compile-time smell rather than a
// runtime guess.
type Field string

// Mutable defect fields, in canonical write order.
const (
	FieldDescription Field = "description"
	FieldPriority    Field = "priority"
	FieldAssignee    Field = "assignee"
	FieldDueDate     Field = "due_date"
	FieldStatus      Field = "status"
)

// fieldOrder fixes the iteration order for deterministic diffs and audit rows.
var fieldOrder = []Field{FieldDescription, FieldPriority, FieldAssignee, FieldDueDate, FieldStatus}

// Opt is an optional request value. The zero value means "field absent from
// the request", which is distinct from "set to the type's zero value".
type Opt[T any] struct {
	set bool
	val T
}

// Some wraps v as a present optional value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{set: true, val: v}
}

// IsSet reports whether the value was present in the request.
func (o Opt[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was present.
func (o Opt[T]) Get() (T, bool) { return o.val, o.set }

// DefectSnapshot is the persisted state of a defect as read at the start of a
// mutation request. It carries everything the engine needs for diffing.
type DefectSnapshot struct {
	ID          int64
	ProjectID   int64
	Number      string
	Title       string
	Description string
	Location    string
	Status      Status
	PriorityID  int64
	AssigneeID  *int64
	ReporterID  int64
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateRequest is a role-gated field update. Absent fields are untouched.
// Assignee and DueDate are nullable: Some(nil) clears them.
type UpdateRequest struct {
	Description Opt[string]
	Priority    Opt[int64]
	Assignee    Opt[*int64]
	DueDate     Opt[*time.Time]
	Status      Opt[Status]
}

// Empty reports whether the request touches no fields.
func (r UpdateRequest) Empty() bool {
	return !r.Description.IsSet() && !r.Priority.IsSet() && !r.Assignee.IsSet() &&
		!r.DueDate.IsSet() && !r.Status.IsSet()
}

// Fields returns the requested fields in canonical order.
func (r UpdateRequest) Fields() []Field {
	out := make([]Field, 0, len(fieldOrder))
	for _, f := range fieldOrder {
		if r.has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r UpdateRequest) has(f Field) bool {
	switch f {
	case FieldDescription:
		return r.Description.IsSet()
	case FieldPriority:
		return r.Priority.IsSet()
	case FieldAssignee:
		return r.Assignee.IsSet()
	case FieldDueDate:
		return r.DueDate.IsSet()
	case FieldStatus:
		return r.Status.IsSet()
	}
	return false
}

// dueDateLayout is the change-log encoding for due dates.
const dueDateLayout = "2006-01-02"

func encodeInt64(v int64) *string {
	s := strconv.FormatInt(v, 10)
	return &s
}

func encodeNullableID(v *int64) *string {
	if v == nil {
		return nil
	}
	return encodeInt64(*v)
}

func encodeNullableDate(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := v.Format(dueDateLayout)
	return &s
}

func encodeString(v string) *string { return &v }

func encodeStatus(s Status) *string {
	v := string(s)
	return &v
}
