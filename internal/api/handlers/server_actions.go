package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProjectActions handles GET /api/projects/:projectID/actions, the
// project's Russian-language activity feed.
func (s *Server) GetProjectActions(c *gin.Context) {
	projectID, ok := pathID(c, "projectID")
	if !ok {
		return
	}
	feed, err := s.actions.ProjectFeed(c.Request.Context(), actorID(c), projectID, queryInt(c, "limit", 0))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": feed})
}
