package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanEditField(t *testing.T) {
	tests := []struct {
		role  Role
		field Field
		want  bool
	}{
		{RoleEngineer, FieldDescription, true},
		{RoleEngineer, FieldStatus, true},
		{RoleEngineer, FieldPriority, false},
		{RoleEngineer, FieldAssignee, false},
		{RoleEngineer, FieldDueDate, false},

		{RoleManager, FieldDescription, true},
		{RoleManager, FieldPriority, true},
		{RoleManager, FieldAssignee, true},
		{RoleManager, FieldDueDate, true},
		{RoleManager, FieldStatus, true},

		{RoleSupervisor, FieldDescription, false},
		{RoleSupervisor, FieldPriority, false},
		{RoleSupervisor, FieldAssignee, false},
		{RoleSupervisor, FieldDueDate, false},
		{RoleSupervisor, FieldStatus, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CanEditField(tt.role, tt.field, false),
			"role=%s field=%s", tt.role, tt.field)
		// A closed defect is frozen for every role and field.
		require.False(t, CanEditField(tt.role, tt.field, true),
			"closed: role=%s field=%s", tt.role, tt.field)
	}
}

func TestEditableFields(t *testing.T) {
	require.Equal(t, []Field{FieldDescription, FieldStatus}, EditableFields(RoleEngineer, false))
	require.Len(t, EditableFields(RoleManager, false), 5)
	require.Empty(t, EditableFields(RoleSupervisor, false))
	require.Empty(t, EditableFields(RoleManager, true))
}

func TestCommentGating(t *testing.T) {
	require.True(t, CanAddComment(RoleEngineer, false))
	require.True(t, CanAddComment(RoleManager, false))
	require.False(t, CanAddComment(RoleSupervisor, false))
	require.False(t, CanAddComment(RoleManager, true))

	const author, other = int64(1), int64(2)
	require.True(t, CanDeleteComment(RoleManager, other, author, false))
	require.True(t, CanDeleteComment(RoleEngineer, author, author, false))
	require.False(t, CanDeleteComment(RoleEngineer, other, author, false))
	require.False(t, CanDeleteComment(RoleSupervisor, author, author, false))
	require.False(t, CanDeleteComment(RoleManager, other, author, true))
}

func TestAttachmentGating(t *testing.T) {
	require.True(t, CanAddAttachment(RoleEngineer, false))
	require.True(t, CanAddAttachment(RoleManager, false))
	require.False(t, CanAddAttachment(RoleSupervisor, false))
	require.False(t, CanAddAttachment(RoleEngineer, true))

	require.True(t, CanDeleteAttachment(RoleManager, false))
	require.False(t, CanDeleteAttachment(RoleEngineer, false))
	require.False(t, CanDeleteAttachment(RoleSupervisor, false))
	require.False(t, CanDeleteAttachment(RoleManager, true))
}

func TestIsImageContentType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/svg+xml"} {
		require.True(t, IsImageContentType(ct), ct)
	}
	for _, ct := range []string{"application/pdf", "text/html", "image/tiff", "video/mp4", ""} {
		require.False(t, IsImageContentType(ct), ct)
	}
}
