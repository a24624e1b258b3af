package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"defectdesk.io/desk/internal/api/handlers"
	"defectdesk.io/desk/internal/api/middleware"
	"defectdesk.io/desk/internal/config"
)

// Public routes that do NOT require JWT authentication.
var publicPrefixes = []string{
	"/api/auth/login",
	"/health/",
}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(jwtSkipPublic(jwtCfg.SigningKey))

	router.GET("/health/live", server.GetLiveness)
	router.GET("/health/ready", server.GetReadiness)

	api := router.Group("/api")
	{
		api.POST("/auth/login", server.Login)
		api.GET("/auth/me", server.GetCurrentUser)

		api.GET("/projects", server.ListProjects)
		api.GET("/projects/:projectID/actions", server.GetProjectActions)
		api.GET("/statuses", server.ListStatuses)
		api.GET("/priorities", server.ListPriorities)

		api.POST("/defects", server.CreateDefect)
		api.GET("/defects", server.ListDefects)
		api.GET("/defects/:id", server.GetDefect)
		api.PATCH("/defects/:id", server.UpdateDefect)
		api.DELETE("/defects/:id", server.DeleteDefect)
		api.GET("/defects/:id/changelog", server.GetDefectChangeLog)
		api.GET("/defects/:id/transitions", server.GetDefectNextStatuses)

		api.GET("/defects/:id/comments", server.ListComments)
		api.POST("/defects/:id/comments", server.AddComment)
		api.DELETE("/defects/:id/comments/:commentID", server.DeleteComment)

		api.GET("/defects/:id/attachments", server.ListAttachments)
		api.POST("/defects/:id/attachments", server.UploadAttachment)
		api.GET("/defects/:id/attachments/:attachmentID", server.DownloadAttachment)
		api.DELETE("/defects/:id/attachments/:attachmentID", server.DeleteAttachment)

		api.GET("/notifications", server.ListNotifications)
		api.GET("/notifications/unread-count", server.GetUnreadCount)
		api.POST("/notifications/:id/read", server.MarkNotificationRead)
		api.POST("/notifications/read-all", server.MarkAllNotificationsRead)
	}

	return router
}

// jwtSkipPublic applies JWT auth only on non-public routes.
func jwtSkipPublic(signingKey []byte) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(signingKey)
	return func(c *gin.Context) {
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}
