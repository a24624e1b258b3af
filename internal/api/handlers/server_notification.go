package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /api/notifications.
func (s *Server) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	items, err := s.notifications.List(c.Request.Context(), actorID(c), unreadOnly, queryInt(c, "limit", 0))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetUnreadCount handles GET /api/notifications/unread-count.
func (s *Server) GetUnreadCount(c *gin.Context) {
	count, err := s.notifications.UnreadCount(c.Request.Context(), actorID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.notifications.MarkRead(c.Request.Context(), actorID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all.
func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := s.notifications.MarkAllRead(c.Request.Context(), actorID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
