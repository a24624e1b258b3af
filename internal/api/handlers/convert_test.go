package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"defectdesk.io/desk/internal/domain"
)

func TestUpdateDefectBodyFieldPresence(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, req domain.UpdateRequest)
	}{
		{
			"empty body touches nothing",
			`{}`,
			func(t *testing.T, req domain.UpdateRequest) {
				require.True(t, req.Empty())
			},
		},
		{
			"absent assignee stays untouched",
			`{"description":"текст"}`,
			func(t *testing.T, req domain.UpdateRequest) {
				require.False(t, req.Assignee.IsSet())
				v, ok := req.Description.Get()
				require.True(t, ok)
				require.Equal(t, "текст", v)
			},
		},
		{
			"null assignee clears",
			`{"assignee_id":null}`,
			func(t *testing.T, req domain.UpdateRequest) {
				v, ok := req.Assignee.Get()
				require.True(t, ok)
				require.Nil(t, v)
			},
		},
		{
			"numeric assignee sets",
			`{"assignee_id":11}`,
			func(t *testing.T, req domain.UpdateRequest) {
				v, ok := req.Assignee.Get()
				require.True(t, ok)
				require.Equal(t, int64(11), *v)
			},
		},
		{
			"null due date clears",
			`{"due_date":null}`,
			func(t *testing.T, req domain.UpdateRequest) {
				v, ok := req.DueDate.Get()
				require.True(t, ok)
				require.Nil(t, v)
			},
		},
		{
			"due date parses",
			`{"due_date":"2026-09-15"}`,
			func(t *testing.T, req domain.UpdateRequest) {
				v, ok := req.DueDate.Get()
				require.True(t, ok)
				require.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), *v)
			},
		},
		{
			"status maps through",
			`{"status":"in_progress"}`,
			func(t *testing.T, req domain.UpdateRequest) {
				v, ok := req.Status.Get()
				require.True(t, ok)
				require.Equal(t, domain.StatusInProgress, v)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body updateDefectBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))
			req, err := body.toUpdateRequest()
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestUpdateDefectBodyRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		`{"assignee_id":"eleven"}`,
		`{"due_date":123}`,
		`{"due_date":"15.09.2026"}`,
	} {
		var body updateDefectBody
		require.NoError(t, json.Unmarshal([]byte(raw), &body))
		_, err := body.toUpdateRequest()
		require.Error(t, err, raw)
	}
}

func TestToDefectResponseDueDateFormat(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	resp := toDefectResponse(domain.DefectSnapshot{
		ID:      1,
		Status:  domain.StatusNew,
		DueDate: &due,
	})
	require.NotNil(t, resp.DueDate)
	require.Equal(t, "2026-09-15", *resp.DueDate)

	resp = toDefectResponse(domain.DefectSnapshot{ID: 1, Status: domain.StatusNew})
	require.Nil(t, resp.DueDate)
}
