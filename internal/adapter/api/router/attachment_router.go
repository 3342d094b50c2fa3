package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"driveattach/internal/adapter/api/handler"
	"driveattach/internal/adapter/api/middleware"
)

func SetupAttachmentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	attachmentHandler := handler.GetAttachmentHandler()

	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)

	attachments := e.Group("/v1/attachments")
	attachments.Use(authMiddleware.Authenticate)

	attachments.POST("", attachmentHandler.Upload, uploadLimiter.Middleware())
	attachments.GET("/serve", attachmentHandler.Serve)
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.DELETE("/:id", attachmentHandler.Delete)
}
