package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/repository"
	"defectdesk.io/desk/internal/service"
)

type createDefectRequest struct {
	ProjectID   int64   `json:"project_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Location    string  `json:"location"`
	PriorityID  int64   `json:"priority_id" binding:"required"`
	AssigneeID  *int64  `json:"assignee_id"`
	DueDate     *string `json:"due_date"`
}

// CreateDefect handles POST /api/defects.
func (s *Server) CreateDefect(c *gin.Context) {
	var req createDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed,
			"project_id, title, description and priority_id are required"))
		return
	}

	var due *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		t, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed,
				"due_date must be formatted YYYY-MM-DD"))
			return
		}
		due = &t
	}

	snap, err := s.defects.Create(c.Request.Context(), actorID(c), service.CreateDefectInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		PriorityID:  req.PriorityID,
		AssigneeID:  req.AssigneeID,
		DueDate:     due,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toDefectResponse(snap))
}

// GetDefect handles GET /api/defects/:id.
func (s *Server) GetDefect(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	snap, err := s.defects.Get(c.Request.Context(), actorID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDefectResponse(snap))
}

// ListDefects handles GET /api/defects.
func (s *Server) ListDefects(c *gin.Context) {
	items, err := s.defects.List(c.Request.Context(), actorID(c), repository.DefectFilter{
		ProjectID: queryInt64(c, "project_id"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Search:    c.Query("search"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// UpdateDefect handles PATCH /api/defects/:id. The request either applies in
// full, with one audit row per changed field, or is rejected in full.
func (s *Server) UpdateDefect(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body updateDefectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "malformed request body"))
		return
	}
	req, err := body.toUpdateRequest()
	if err != nil {
		_ = c.Error(err)
		return
	}

	snap, err := s.defects.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toDefectResponse(snap))
}

// DeleteDefect handles DELETE /api/defects/:id.
func (s *Server) DeleteDefect(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.defects.Delete(c.Request.Context(), actorID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDefectChangeLog handles GET /api/defects/:id/changelog.
func (s *Server) GetDefectChangeLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := s.defects.ChangeLog(c.Request.Context(), actorID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]changeLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toChangeLogResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// GetDefectNextStatuses handles GET /api/defects/:id/transitions.
func (s *Server) GetDefectNextStatuses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	statuses, err := s.defects.NextStatuses(c.Request.Context(), actorID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}
