package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/service"
)

// ListAttachments handles GET /api/defects/:id/attachments.
func (s *Server) ListAttachments(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachments, err := s.attachments.List(c.Request.Context(), actorID(c), defectID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]attachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, toAttachmentResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// UploadAttachment handles POST /api/defects/:id/attachments. Multipart form
// with a single "file" part; only images are accepted.
func (s *Server) UploadAttachment(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed,
			"multipart field 'file' is required"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "unreadable upload"))
		return
	}
	defer f.Close()

	a, err := s.attachments.Upload(c.Request.Context(), actorID(c), defectID, service.UploadInput{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         f,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toAttachmentResponse(a))
}

// DownloadAttachment handles GET /api/defects/:id/attachments/:attachmentID.
func (s *Server) DownloadAttachment(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentID")
	if !ok {
		return
	}
	a, err := s.attachments.Get(c.Request.Context(), actorID(c), defectID, attachmentID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Type", a.ContentType)
	c.FileAttachment(a.FilePath, a.OriginalName)
}

// DeleteAttachment handles DELETE /api/defects/:id/attachments/:attachmentID.
func (s *Server) DeleteAttachment(c *gin.Context) {
	defectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := pathID(c, "attachmentID")
	if !ok {
		return
	}
	if err := s.attachments.Delete(c.Request.Context(), actorID(c), defectID, attachmentID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
