// Package handlers implements the DefectDesk HTTP API on Gin. Handlers bind
// and validate transport input, then delegate to the services; every
// permission and lifecycle decision lives below this layer.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"defectdesk.io/desk/internal/api/middleware"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/service"
)

// Server implements all API handlers.
type Server struct {
	pool          *pgxpool.Pool
	jwtCfg        middleware.JWTConfig
	auth          *service.AuthService
	defects       *service.DefectService
	comments      *service.CommentService
	attachments   *service.AttachmentService
	actions       *service.ActionsService
	notifications *service.NotificationService
	reference     *service.ReferenceService
}

// ServerDeps holds all dependencies for creating a Server. Manual DI, no
// Wire/Dig.
type ServerDeps struct {
	Pool          *pgxpool.Pool
	JWTCfg        middleware.JWTConfig
	Auth          *service.AuthService
	Defects       *service.DefectService
	Comments      *service.CommentService
	Attachments   *service.AttachmentService
	Actions       *service.ActionsService
	Notifications *service.NotificationService
	Reference     *service.ReferenceService
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		pool:          deps.Pool,
		jwtCfg:        deps.JWTCfg,
		auth:          deps.Auth,
		defects:       deps.Defects,
		comments:      deps.Comments,
		attachments:   deps.Attachments,
		actions:       deps.Actions,
		notifications: deps.Notifications,
		reference:     deps.Reference,
	}
}

// actorID extracts the authenticated user id from the request context.
func actorID(c *gin.Context) int64 {
	return middleware.GetUserID(c.Request.Context())
}

// pathID parses a positive int64 path parameter, aborting with a validation
// error on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed,
			"invalid path parameter: "+name))
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, returning def when
// absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryInt64 parses an optional int64 query parameter.
func queryInt64(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
