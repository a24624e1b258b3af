package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreationEntries(t *testing.T) {
	snap := testSnapshot()
	snap.Status = StatusNew

	entries := CreationEntries(snap, 3)
	require.Len(t, entries, 5)
	for _, e := range entries {
		require.Equal(t, ChangeCreate, e.ChangeType)
		require.Equal(t, snap.ID, e.DefectID)
		require.Equal(t, int64(3), e.ActorID)
		require.Nil(t, e.OldValue)
		require.NotNil(t, e.NewValue)
	}

	// Without assignee and due date only the always-populated fields appear.
	bare := snap
	bare.AssigneeID = nil
	bare.DueDate = nil
	entries = CreationEntries(bare, 3)
	require.Len(t, entries, 3)
}

func TestReplayReconstructsState(t *testing.T) {
	snap := testSnapshot()
	snap.Status = StatusNew

	log := CreationEntries(snap, 3)

	// A few mutations on top of creation.
	plan, err := PlanUpdate(snap, RoleManager, 9, UpdateRequest{
		Priority: Some(int64(4)),
		Status:   Some(StatusInProgress),
	}, time.Now())
	require.NoError(t, err)
	log = append(log, plan.Entries...)

	snap.PriorityID = 4
	snap.Status = StatusInProgress
	plan, err = PlanUpdate(snap, RoleEngineer, 7, UpdateRequest{
		Description: Some("дополненное описание"),
		Status:      Some(StatusReview),
	}, time.Now())
	require.NoError(t, err)
	log = append(log, plan.Entries...)

	state := Replay(log)
	require.Equal(t, "дополненное описание", *state[FieldDescription])
	require.Equal(t, "4", *state[FieldPriority])
	require.Equal(t, "review", *state[FieldStatus])
	require.Equal(t, "7", *state[FieldAssignee])
	require.Equal(t, "2026-09-15", *state[FieldDueDate])
}

func TestReplayIgnoresActivityEntries(t *testing.T) {
	content := "комментарий"
	log := []ChangeLogEntry{
		{FieldName: string(FieldDescription), NewValue: &content, ChangeType: ChangeCreate},
		{FieldName: LogFieldComment, NewValue: &content, ChangeType: ChangeCreate},
		{FieldName: LogFieldAttachment, NewValue: &content, ChangeType: ChangeCreate},
		{FieldName: LogFieldComment, OldValue: &content, ChangeType: ChangeDelete},
	}

	state := Replay(log)
	require.Len(t, state, 1)
	require.Contains(t, state, FieldDescription)
}
