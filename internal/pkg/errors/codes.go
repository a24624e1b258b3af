package errors

import (
	"fmt"
	"net/http"
)

// Error code constants. Errors carry code + params; user-facing wording is a
// frontend concern, backend messages stay in English.

// Defect lifecycle error codes.
const (
	CodeDefectNotFound    = "DEFECT_NOT_FOUND"
	CodeDefectFrozen      = "DEFECT_FROZEN"
	CodeFieldNotEditable  = "FIELD_NOT_EDITABLE"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
)

// Comment and attachment error codes.
const (
	CodeCommentNotFound     = "COMMENT_NOT_FOUND"
	CodeAttachmentNotFound  = "ATTACHMENT_NOT_FOUND"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
)

// Project and reference data error codes.
const (
	CodeProjectNotFound  = "PROJECT_NOT_FOUND"
	CodePriorityNotFound = "PRIORITY_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeNoProjectRole    = "NO_PROJECT_ROLE"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Validation and infrastructure error codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// Convenience constructors using predefined codes.

// ErrDefectNotFoundf creates a defect not found error.
func ErrDefectNotFoundf(defectID int64) *AppError {
	return &AppError{
		Code:       CodeDefectNotFound,
		Message:    "defect not found",
		HTTPStatus: http.StatusNotFound,
		Params:     map[string]interface{}{"defect_id": defectID},
	}
}

// ErrDefectFrozenf creates a frozen defect error: the defect is closed and
// accepts no further writes.
func ErrDefectFrozenf(defectID int64) *AppError {
	return &AppError{
		Code:       CodeDefectFrozen,
		Message:    "defect is closed and cannot be edited",
		HTTPStatus: http.StatusForbidden,
		Params:     map[string]interface{}{"defect_id": defectID},
	}
}

// ErrFieldNotEditablef creates a field permission error citing the field.
func ErrFieldNotEditablef(field string) *AppError {
	return &AppError{
		Code:       CodeFieldNotEditable,
		Message:    "field is not editable for this role: " + field,
		HTTPStatus: http.StatusForbidden,
		Params:     map[string]interface{}{"field": field},
	}
}

// ErrIllegalTransitionf creates a status graph violation error.
func ErrIllegalTransitionf(from, to string) *AppError {
	return &AppError{
		Code:       CodeIllegalTransition,
		Message:    fmt.Sprintf("status transition %s -> %s is not allowed", from, to),
		HTTPStatus: http.StatusBadRequest,
		Params:     map[string]interface{}{"from": from, "to": to},
	}
}

// ErrStorageUnavailable wraps a persistence failure. The whole transaction has
// rolled back; the caller may retry.
func ErrStorageUnavailable(err error) *AppError {
	return Wrap(err, CodeStorageUnavailable, "storage unavailable", http.StatusServiceUnavailable)
}
