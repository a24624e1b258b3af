package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStatuses handles GET /api/statuses.
func (s *Server) ListStatuses(c *gin.Context) {
	statuses, err := s.reference.Statuses(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": statuses})
}

// ListPriorities handles GET /api/priorities.
func (s *Server) ListPriorities(c *gin.Context) {
	priorities, err := s.reference.Priorities(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": priorities})
}

// ListProjects handles GET /api/projects, the caller's project memberships.
func (s *Server) ListProjects(c *gin.Context) {
	projects, err := s.reference.Projects(c.Request.Context(), actorID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": projects})
}
