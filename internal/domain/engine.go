package domain

import (
	"time"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// The mutation engine. PlanUpdate turns an update request into either a full
// write-set (field writes + audit rows) or a rejection. Nothing is ever
// partially applied: the first disallowed field rejects the whole request,
// and the repository commits the resulting plan in a single transaction.

// ValueChange is one applied field change in change-log encoding.
type ValueChange struct {
	Old *string
	New *string
}

// FieldWrites is the set of column writes a plan produces. Nil pointers mean
// "leave untouched"; nullable fields use Opt so that clearing is distinct
// from absent.
type FieldWrites struct {
	Description *string
	PriorityID  *int64
	AssigneeID  Opt[*int64]
	DueDate     Opt[*time.Time]
	Status      *Status
	ClosedAt    *time.Time
}

// Empty reports whether the plan writes no columns.
func (w FieldWrites) Empty() bool {
	return w.Description == nil && w.PriorityID == nil && !w.AssigneeID.IsSet() &&
		!w.DueDate.IsSet() && w.Status == nil
}

// MutationPlan is the committed outcome of a validated update request.
type MutationPlan struct {
	DefectID  int64
	ActorID   int64
	Writes    FieldWrites
	Entries   []ChangeLogEntry
	Applied   map[Field]ValueChange
	UpdatedAt time.Time
}

// NoOp reports whether the plan changes nothing. No-op plans skip the
// transaction entirely: no audit rows, no updated_at bump.
func (p *MutationPlan) NoOp() bool {
	return len(p.Entries) == 0 && p.Writes.Empty()
}

// PlanUpdate validates an update request against the permission matrix and
// the transition graph, diffs it against the persisted snapshot, and returns
// the write-set with one change-log entry per actually-changed field.
//
// Rejection order: frozen defect, first non-editable field, illegal status
// transition. Fields whose requested value equals the stored value are
// dropped silently.
func PlanUpdate(d DefectSnapshot, role Role, actorID int64, req UpdateRequest, now time.Time) (*MutationPlan, error) {
	plan := &MutationPlan{
		DefectID:  d.ID,
		ActorID:   actorID,
		Applied:   make(map[Field]ValueChange),
		UpdatedAt: now,
	}

	// An empty request is trivially successful, even on a closed defect.
	if req.Empty() {
		return plan, nil
	}

	if d.Status == StatusClosed {
		return nil, apperrors.ErrDefectFrozenf(d.ID)
	}

	for _, f := range req.Fields() {
		if !CanEditField(role, f, false) {
			return nil, apperrors.ErrFieldNotEditablef(string(f))
		}
	}

	if requested, ok := req.Status.Get(); ok {
		if !requested.Valid() {
			return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
				"unknown defect status: "+string(requested))
		}
		if err := ValidateTransition(d.Status, requested, role); err != nil {
			return nil, err
		}
	}

	if v, ok := req.Description.Get(); ok && v != d.Description {
		plan.record(FieldDescription, encodeString(d.Description), encodeString(v), ChangeUpdate)
		plan.Writes.Description = &v
	}
	if v, ok := req.Priority.Get(); ok && v != d.PriorityID {
		plan.record(FieldPriority, encodeInt64(d.PriorityID), encodeInt64(v), ChangeUpdate)
		plan.Writes.PriorityID = &v
	}
	if v, ok := req.Assignee.Get(); ok && !sameID(v, d.AssigneeID) {
		plan.record(FieldAssignee, encodeNullableID(d.AssigneeID), encodeNullableID(v), ChangeUpdate)
		plan.Writes.AssigneeID = Some(v)
	}
	if v, ok := req.DueDate.Get(); ok && !sameDate(v, d.DueDate) {
		plan.record(FieldDueDate, encodeNullableDate(d.DueDate), encodeNullableDate(v), ChangeUpdate)
		plan.Writes.DueDate = Some(v)
	}
	if v, ok := req.Status.Get(); ok && v != d.Status {
		plan.record(FieldStatus, encodeStatus(d.Status), encodeStatus(v), ChangeStatusChange)
		plan.Writes.Status = &v
		if v.Terminal() {
			closedAt := now
			plan.Writes.ClosedAt = &closedAt
		}
	}

	return plan, nil
}

func (p *MutationPlan) record(f Field, oldVal, newVal *string, ct ChangeType) {
	p.Entries = append(p.Entries, ChangeLogEntry{
		DefectID:   p.DefectID,
		ActorID:    p.ActorID,
		FieldName:  string(f),
		OldValue:   oldVal,
		NewValue:   newVal,
		ChangeType: ct,
		CreatedAt:  p.UpdatedAt,
	})
	p.Applied[f] = ValueChange{Old: oldVal, New: newVal}
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(dueDateLayout) == b.Format(dueDateLayout)
}
