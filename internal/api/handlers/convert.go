package handlers

import (
	"encoding/json"
	"time"

	"defectdesk.io/desk/internal/domain"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/repository"
)

// Transport DTOs and converters. Dates on the wire are YYYY-MM-DD for due
// dates and RFC 3339 for timestamps.

const dateLayout = "2006-01-02"

type defectResponse struct {
	ID          int64      `json:"id"`
	Number      string     `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status"`
	PriorityID  int64      `json:"priority_id"`
	AssigneeID  *int64     `json:"assignee_id"`
	ReporterID  int64      `json:"reporter_id"`
	ProjectID   int64      `json:"project_id"`
	DueDate     *string    `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toDefectResponse(d domain.DefectSnapshot) defectResponse {
	var due *string
	if d.DueDate != nil {
		s := d.DueDate.Format(dateLayout)
		due = &s
	}
	return defectResponse{
		ID:          d.ID,
		Number:      d.Number,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Status:      string(d.Status),
		PriorityID:  d.PriorityID,
		AssigneeID:  d.AssigneeID,
		ReporterID:  d.ReporterID,
		ProjectID:   d.ProjectID,
		DueDate:     due,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type changeLogResponse struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	FieldName  string    `json:"field_name"`
	OldValue   *string   `json:"old_value"`
	NewValue   *string   `json:"new_value"`
	ChangeType string    `json:"change_type"`
	CreatedAt  time.Time `json:"created_at"`
}

func toChangeLogResponse(e domain.ChangeLogEntry) changeLogResponse {
	return changeLogResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		FieldName:  e.FieldName,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		ChangeType: string(e.ChangeType),
		CreatedAt:  e.CreatedAt,
	}
}

type commentResponse struct {
	ID         int64     `json:"id"`
	DefectID   int64     `json:"defect_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCommentResponse(c repository.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		DefectID:   c.DefectID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

type attachmentResponse struct {
	ID           int64     `json:"id"`
	DefectID     int64     `json:"defect_id"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	ContentType  string    `json:"content_type"`
	UploadedBy   int64     `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func toAttachmentResponse(a repository.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:           a.ID,
		DefectID:     a.DefectID,
		OriginalName: a.OriginalName,
		FileSize:     a.FileSize,
		ContentType:  a.ContentType,
		UploadedBy:   a.UploadedBy,
		UploadedAt:   a.UploadedAt,
	}
}

// updateDefectBody distinguishes an absent field from an explicit null.
// Nullable fields (assignee_id, due_date) use RawMessage so that null clears
// the field while absence leaves it untouched.
type updateDefectBody struct {
	Description *string         `json:"description"`
	PriorityID  *int64          `json:"priority_id"`
	AssigneeID  json.RawMessage `json:"assignee_id"`
	DueDate     json.RawMessage `json:"due_date"`
	Status      *string         `json:"status"`
}

func (b updateDefectBody) toUpdateRequest() (domain.UpdateRequest, error) {
	var req domain.UpdateRequest

	if b.Description != nil {
		req.Description = domain.Some(*b.Description)
	}
	if b.PriorityID != nil {
		req.Priority = domain.Some(*b.PriorityID)
	}
	if b.Status != nil {
		req.Status = domain.Some(domain.Status(*b.Status))
	}

	if len(b.AssigneeID) > 0 {
		if string(b.AssigneeID) == "null" {
			req.Assignee = domain.Some[*int64](nil)
		} else {
			var id int64
			if err := json.Unmarshal(b.AssigneeID, &id); err != nil {
				return req, apperrors.BadRequest(apperrors.CodeValidationFailed,
					"assignee_id must be a number or null")
			}
			req.Assignee = domain.Some(&id)
		}
	}

	if len(b.DueDate) > 0 {
		if string(b.DueDate) == "null" {
			req.DueDate = domain.Some[*time.Time](nil)
		} else {
			var raw string
			if err := json.Unmarshal(b.DueDate, &raw); err != nil {
				return req, apperrors.BadRequest(apperrors.CodeValidationFailed,
					"due_date must be a YYYY-MM-DD string or null")
			}
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				return req, apperrors.BadRequest(apperrors.CodeValidationFailed,
					"due_date must be formatted YYYY-MM-DD")
			}
			req.DueDate = domain.Some(&t)
		}
	}

	return req, nil
}
