package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

func testSnapshot() DefectSnapshot {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	assignee := int64(7)
	return DefectSnapshot{
		ID:          42,
		ProjectID:   1,
		Number:      "DEF-2026-0042",
		Title:       "Трещина в стене",
		Description: "Трещина в несущей стене на третьем этаже",
		Status:      StatusInProgress,
		PriorityID:  2,
		AssigneeID:  &assignee,
		ReporterID:  3,
		DueDate:     &due,
	}
}

func TestPlanUpdateEmptyRequestIsTrivial(t *testing.T) {
	now := time.Now()

	plan, err := PlanUpdate(testSnapshot(), RoleEngineer, 7, UpdateRequest{}, now)
	require.NoError(t, err)
	require.True(t, plan.NoOp())

	// Even on a closed defect.
	closed := testSnapshot()
	closed.Status = StatusClosed
	plan, err = PlanUpdate(closed, RoleManager, 7, UpdateRequest{}, now)
	require.NoError(t, err)
	require.True(t, plan.NoOp())
}

func TestPlanUpdateClosedDefectIsFrozen(t *testing.T) {
	closed := testSnapshot()
	closed.Status = StatusClosed

	req := UpdateRequest{Description: Some("обновление")}
	_, err := PlanUpdate(closed, RoleManager, 7, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeDefectFrozen, appErr.Code)
}

func TestPlanUpdateRejectsWholeRequestOnForbiddenField(t *testing.T) {
	// Engineer tries description (allowed) plus priority (not allowed):
	// nothing is applied.
	req := UpdateRequest{
		Description: Some("новое описание"),
		Priority:    Some(int64(4)),
	}
	_, err := PlanUpdate(testSnapshot(), RoleEngineer, 7, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeFieldNotEditable, appErr.Code)
	require.Equal(t, "priority", appErr.Params["field"])
}

func TestPlanUpdateSupervisorCannotTouchStatus(t *testing.T) {
	req := UpdateRequest{Status: Some(StatusReview)}
	_, err := PlanUpdate(testSnapshot(), RoleSupervisor, 9, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeFieldNotEditable, appErr.Code)
}

func TestPlanUpdateIllegalTransition(t *testing.T) {
	snap := testSnapshot()
	snap.Status = StatusNew

	req := UpdateRequest{Status: Some(StatusClosed)}
	_, err := PlanUpdate(snap, RoleManager, 9, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeIllegalTransition, appErr.Code)
}

func TestPlanUpdateEngineerCannotClose(t *testing.T) {
	snap := testSnapshot()
	snap.Status = StatusReview

	req := UpdateRequest{Status: Some(StatusClosed)}
	_, err := PlanUpdate(snap, RoleEngineer, 7, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestPlanUpdateUnknownStatusRejected(t *testing.T) {
	req := UpdateRequest{Status: Some(Status("paused"))}
	_, err := PlanUpdate(testSnapshot(), RoleManager, 9, req, time.Now())

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestPlanUpdateDropsEqualValuesSilently(t *testing.T) {
	snap := testSnapshot()
	req := UpdateRequest{
		Description: Some(snap.Description),
		Priority:    Some(snap.PriorityID),
		Status:      Some(snap.Status),
	}

	plan, err := PlanUpdate(snap, RoleManager, 9, req, time.Now())
	require.NoError(t, err)
	require.True(t, plan.NoOp())
	require.Empty(t, plan.Entries)
}

func TestPlanUpdateStatusChangeEntry(t *testing.T) {
	snap := testSnapshot()
	now := time.Now()

	plan, err := PlanUpdate(snap, RoleEngineer, 7, UpdateRequest{Status: Some(StatusReview)}, now)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	e := plan.Entries[0]
	require.Equal(t, string(FieldStatus), e.FieldName)
	require.Equal(t, ChangeStatusChange, e.ChangeType)
	require.Equal(t, "in_progress", *e.OldValue)
	require.Equal(t, "review", *e.NewValue)

	require.Equal(t, StatusReview, *plan.Writes.Status)
	require.Nil(t, plan.Writes.ClosedAt)
}

func TestPlanUpdateTerminalStatusSetsClosedAt(t *testing.T) {
	snap := testSnapshot()
	snap.Status = StatusReview
	now := time.Now()

	plan, err := PlanUpdate(snap, RoleManager, 9, UpdateRequest{Status: Some(StatusClosed)}, now)
	require.NoError(t, err)

	require.NotNil(t, plan.Writes.ClosedAt)
	require.Equal(t, now, *plan.Writes.ClosedAt)
	require.Equal(t, "review", *plan.Entries[0].OldValue)
	require.Equal(t, "closed", *plan.Entries[0].NewValue)
}

func TestPlanUpdateMultiFieldEntriesInCanonicalOrder(t *testing.T) {
	snap := testSnapshot()
	newAssignee := int64(11)
	req := UpdateRequest{
		Description: Some("уточненное описание"),
		Priority:    Some(int64(4)),
		Assignee:    Some(&newAssignee),
		Status:      Some(StatusReview),
	}

	plan, err := PlanUpdate(snap, RoleManager, 9, req, time.Now())
	require.NoError(t, err)
	require.Len(t, plan.Entries, 4)

	fields := make([]string, len(plan.Entries))
	for i, e := range plan.Entries {
		fields[i] = e.FieldName
	}
	require.Equal(t, []string{"description", "priority", "assignee", "status"}, fields)

	// Every applied field has both the write and the audit diff.
	require.Len(t, plan.Applied, 4)
	require.Equal(t, "2", *plan.Applied[FieldPriority].Old)
	require.Equal(t, "4", *plan.Applied[FieldPriority].New)
	require.Equal(t, "7", *plan.Applied[FieldAssignee].Old)
	require.Equal(t, "11", *plan.Applied[FieldAssignee].New)
}

func TestPlanUpdateClearsNullableFields(t *testing.T) {
	snap := testSnapshot()
	req := UpdateRequest{
		Assignee: Some[*int64](nil),
		DueDate:  Some[*time.Time](nil),
	}

	plan, err := PlanUpdate(snap, RoleManager, 9, req, time.Now())
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)

	require.Equal(t, "7", *plan.Applied[FieldAssignee].Old)
	require.Nil(t, plan.Applied[FieldAssignee].New)
	require.Equal(t, "2026-09-15", *plan.Applied[FieldDueDate].Old)
	require.Nil(t, plan.Applied[FieldDueDate].New)

	v, set := plan.Writes.AssigneeID.Get()
	require.True(t, set)
	require.Nil(t, v)
}

func TestPlanUpdateSameDayDueDateIsNoOp(t *testing.T) {
	snap := testSnapshot()
	// Same calendar day, different clock time.
	sameDay := snap.DueDate.Add(5 * time.Hour)

	plan, err := PlanUpdate(snap, RoleManager, 9, UpdateRequest{DueDate: Some(&sameDay)}, time.Now())
	require.NoError(t, err)
	require.True(t, plan.NoOp())
}
