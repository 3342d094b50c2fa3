package router

import (
	"github.com/labstack/echo/v4"

	"driveattach/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupAttachmentRouter(e, authMiddleware)
	SetupDriveAdminRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
