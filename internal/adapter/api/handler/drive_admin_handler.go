package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/service"
	"driveattach/internal/usecase"
	"driveattach/pkg/errors"
	"driveattach/pkg/response"
)

type DriveAdminHandler struct {
	auth      *usecase.AuthUseCase
	lifecycle *usecase.LifecycleUseCase
	configs   *usecase.ConfigUseCase
	drive     service.DriveService
}

func NewDriveAdminHandler(auth *usecase.AuthUseCase, lifecycle *usecase.LifecycleUseCase, configs *usecase.ConfigUseCase, drive service.DriveService) *DriveAdminHandler {
	return &DriveAdminHandler{
		auth:      auth,
		lifecycle: lifecycle,
		configs:   configs,
		drive:     drive,
	}
}

func (h *DriveAdminHandler) Authorize(c echo.Context) error {
	var req struct {
		Reauthorize bool   `json:"reauthorize"`
		Code        string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.auth.Authorize(c.Request().Context(), req.Reauthorize, req.Code)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

// Callback receives the provider redirect after consent and finishes the
// exchange with the one-time code it carries.
func (h *DriveAdminHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return response.Error(c, errors.BadRequest("Authorization code is required", nil))
	}

	result, err := h.auth.Authorize(c.Request().Context(), false, code)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *DriveAdminHandler) Migrate(c echo.Context) error {
	result, err := h.lifecycle.MigrateExisting(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

// FileInfo returns the Drive-side metadata of an offloaded file; null when
// the lookup fails.
func (h *DriveAdminHandler) FileInfo(c echo.Context) error {
	info, err := h.drive.GetMetadata(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, info)
}

func (h *DriveAdminHandler) TestConnection(c echo.Context) error {
	if err := h.drive.TestConnection(c.Request().Context()); err != nil {
		return response.Success(c, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
	}

	return response.Success(c, map[string]interface{}{
		"success": true,
		"message": "Drive connection successful",
	})
}

func (h *DriveAdminHandler) Settings(c echo.Context) error {
	settings, err := h.configs.Settings(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, settings)
}

func (h *DriveAdminHandler) UpdateSettings(c echo.Context) error {
	var req struct {
		Enabled           bool   `json:"enabled"`
		ParentFolderID    string `json:"parent_folder_id"`
		FolderPrefix      string `json:"folder_prefix"`
		SharingPermission string `json:"sharing_permission" validate:"omitempty,oneof=default link_view link_edit specific_people"`
		SpecificEmails    string `json:"specific_emails"`
		DeleteFromDrive   bool   `json:"delete_from_drive"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	// Preserve stored credentials; the settings form never carries them.
	cfg, err := h.configs.Get(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	updated := *cfg
	updated.Enabled = req.Enabled
	updated.ParentFolderID = req.ParentFolderID
	updated.FolderNamePrefix = req.FolderPrefix
	if req.SharingPermission != "" {
		updated.SharingPermission = entity.SharingPermission(req.SharingPermission)
	}
	updated.SpecificEmails = req.SpecificEmails
	updated.DeleteFromDrive = req.DeleteFromDrive

	if err := h.configs.Save(c.Request().Context(), &updated); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Configuration updated",
	})
}

func (h *DriveAdminHandler) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}
