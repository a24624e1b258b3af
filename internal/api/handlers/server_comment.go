package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListComments handles GET /api/defects/:id/comments.
func (s *Server) ListComments(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := s.comments.List(c.Request.Context(), actorID(c), defectID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// AddComment handles POST /api/defects/:id/comments.
func (s *Server) AddComment(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "content is required"))
		return
	}
	cm, err := s.comments.Add(c.Request.Context(), actorID(c), defectID, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(cm))
}

// DeleteComment handles DELETE /api/defects/:id/comments/:commentID.
func (s *Server) DeleteComment(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentID")
	if !ok {
		return
	}
	if err := s.comments.Delete(c.Request.Context(), actorID(c), defectID, commentID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
