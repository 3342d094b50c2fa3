package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"driveattach/internal/adapter/api/handler"
	"driveattach/internal/adapter/api/middleware"
)

func SetupDriveAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	driveAdminHandler := handler.GetDriveAdminHandler()

	adminLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Liveness probe, reachable without a token.
	e.GET("/v1/admin/drive/ping", driveAdminHandler.Ping)

	// Consent redirect target; the provider calls it without a bearer token.
	e.GET("/v1/admin/drive/callback", driveAdminHandler.Callback)

	admin := e.Group("/v1/admin/drive")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminLimiter.Middleware())

	admin.POST("/authorize", driveAdminHandler.Authorize)
	admin.POST("/migrate", driveAdminHandler.Migrate)
	admin.GET("/files/:id", driveAdminHandler.FileInfo)
	admin.GET("/test", driveAdminHandler.TestConnection)
	admin.GET("/settings", driveAdminHandler.Settings)
	admin.PUT("/settings", driveAdminHandler.UpdateSettings)
}
