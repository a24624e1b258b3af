package service

import (
	"context"

	"defectdesk.io/desk/internal/repository"
)

// NotificationService exposes a user's in-app notifications.
type NotificationService struct {
	store *repository.Store
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(store *repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the caller's notifications newest-first.
func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]repository.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly, limit)
}

// UnreadCount returns the caller's unread badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}

// MarkRead marks one of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.store.MarkNotificationRead(ctx, userID, notificationID)
}

// MarkAllRead marks all of the caller's notifications read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}
