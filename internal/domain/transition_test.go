package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		request  Status
		role     Role
		wantCode string
	}{
		{"engineer starts work", StatusNew, StatusInProgress, RoleEngineer, ""},
		{"manager starts work", StatusNew, StatusInProgress, RoleManager, ""},
		{"engineer submits for review", StatusInProgress, StatusReview, RoleEngineer, ""},
		{"manager closes from review", StatusReview, StatusClosed, RoleManager, ""},
		{"manager cancels new", StatusNew, StatusCancelled, RoleManager, ""},
		{"manager cancels in progress", StatusInProgress, StatusCancelled, RoleManager, ""},

		{"same status is a no-op", StatusReview, StatusReview, RoleEngineer, ""},
		{"same terminal status is a no-op", StatusClosed, StatusClosed, RoleManager, ""},

		{"engineer cannot close", StatusReview, StatusClosed, RoleEngineer, apperrors.CodeForbidden},
		{"engineer cannot cancel", StatusNew, StatusCancelled, RoleEngineer, apperrors.CodeForbidden},
		{"supervisor cannot change status", StatusNew, StatusInProgress, RoleSupervisor, apperrors.CodeForbidden},

		{"no shortcut to closed", StatusNew, StatusClosed, RoleManager, apperrors.CodeIllegalTransition},
		{"no skip to review", StatusNew, StatusReview, RoleManager, apperrors.CodeIllegalTransition},
		{"no cancel from review", StatusReview, StatusCancelled, RoleManager, apperrors.CodeIllegalTransition},
		{"no reopening closed", StatusClosed, StatusInProgress, RoleManager, apperrors.CodeIllegalTransition},
		{"no reviving cancelled", StatusCancelled, StatusNew, RoleManager, apperrors.CodeIllegalTransition},
		{"no backward move", StatusReview, StatusInProgress, RoleManager, apperrors.CodeIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.current, tt.request, tt.role)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			appErr, ok := apperrors.IsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			require.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestNextStatuses(t *testing.T) {
	require.Equal(t, []Status{StatusInProgress}, NextStatuses(StatusNew, RoleEngineer))
	require.Equal(t, []Status{StatusInProgress, StatusCancelled}, NextStatuses(StatusNew, RoleManager))
	require.Equal(t, []Status{StatusReview}, NextStatuses(StatusInProgress, RoleEngineer))
	require.Equal(t, []Status{StatusReview, StatusCancelled}, NextStatuses(StatusInProgress, RoleManager))
	require.Equal(t, []Status{StatusClosed}, NextStatuses(StatusReview, RoleManager))

	require.Empty(t, NextStatuses(StatusReview, RoleEngineer))
	require.Empty(t, NextStatuses(StatusClosed, RoleManager))
	require.Empty(t, NextStatuses(StatusCancelled, RoleManager))
	require.Empty(t, NextStatuses(StatusNew, RoleSupervisor))
}
