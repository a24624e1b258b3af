package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobKindsAreStable(t *testing.T) {
	// Kinds are persisted in river_job rows; changing them orphans queued jobs.
	require.Equal(t, "overdue_escalation", OverdueEscalationArgs{}.Kind())
	require.Equal(t, "notification_cleanup", NotificationCleanupArgs{}.Kind())
}

func TestPeriodicJobsRunOnce(t *testing.T) {
	opts := OverdueEscalationArgs{}.InsertOpts()
	require.Equal(t, 1, opts.MaxAttempts)
	require.Equal(t, time.Hour, opts.UniqueOpts.ByPeriod)

	opts = NotificationCleanupArgs{}.InsertOpts()
	require.Equal(t, 1, opts.MaxAttempts)
	require.Equal(t, 24*time.Hour, opts.UniqueOpts.ByPeriod)
}

func TestNotificationCleanupRetentionFallback(t *testing.T) {
	w := NewNotificationCleanupWorker(nil, 0)
	require.Equal(t, DefaultNotificationRetention, w.retention)

	w = NewNotificationCleanupWorker(nil, 30*24*time.Hour)
	require.Equal(t, 30*24*time.Hour, w.retention)
}
