package repository

import (
	"context"
	"time"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// Notification types, mirrored by the notification_type_check constraint.
const (
	NotifyDefectAssigned = "defect_assigned"
	NotifyStatusChanged  = "status_changed"
	NotifyCommentAdded   = "comment_added"
	NotifyDueApproaching = "due_date_approaching"
	NotifyOverdue        = "overdue"
)

// Notification is one in-app notification row.
type Notification struct {
	ID          int64
	RecipientID int64
	SenderID    *int64
	DefectID    *int64
	Title       string
	Message     string
	Type        string
	IsRead      bool
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// CreateNotification inserts a notification. Failures here are logged by the
// dispatcher, never surfaced to the request that triggered them.
func (s *Store) CreateNotification(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, sender_id, defect_id, title, message, notification_type)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id`,
		n.RecipientID, n.SenderID, n.DefectID, n.Title, n.Message, n.Type).
		Scan(&id)
	if err != nil {
		return 0, storageErr("insert notification", err)
	}
	return id, nil
}

// ListNotifications returns a user's notifications newest-first, optionally
// only the unread ones.
func (s *Store) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient_id, sender_id, defect_id, title, COALESCE(message, ''),
		       notification_type, is_read, created_at, read_at
		FROM notifications
		WHERE recipient_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, storageErr("list notifications", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.DefectID, &n.Title,
			&n.Message, &n.Type, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, storageErr("scan notification", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list notifications", err)
	}
	return out, nil
}

// CountUnreadNotifications returns a user's unread badge count.
func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, recipientID).
		Scan(&n)
	if err != nil {
		return 0, storageErr("count unread notifications", err)
	}
	return n, nil
}

// MarkNotificationRead marks one notification read, scoped to its recipient.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientID, notificationID int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND recipient_id = $2 AND NOT is_read`, notificationID, recipientID)
	if err != nil {
		return storageErr("mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodeValidationFailed, "notification not found or already read")
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a user read.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = now()
		WHERE recipient_id = $1 AND NOT is_read`, recipientID)
	if err != nil {
		return 0, storageErr("mark all notifications read", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteNotificationsBefore removes read notifications older than cutoff and
// returns the number removed. The retention job runs this on a schedule.
func (s *Store) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM notifications WHERE is_read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, storageErr("delete old notifications", err)
	}
	return tag.RowsAffected(), nil
}
