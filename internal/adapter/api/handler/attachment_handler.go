package handler

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/internal/usecase"
	"driveattach/pkg/errors"
	"driveattach/pkg/logger"
	"driveattach/pkg/response"
)

type AttachmentHandler struct {
	files       repository.FileRecordRepository
	lifecycle   *usecase.LifecycleUseCase
	store       usecase.LocalFileStore
	maxFileSize int64
}

func NewAttachmentHandler(files repository.FileRecordRepository, lifecycle *usecase.LifecycleUseCase, store usecase.LocalFileStore) *AttachmentHandler {
	return &AttachmentHandler{
		files:       files,
		lifecycle:   lifecycle,
		store:       store,
		maxFileSize: 25 * 1024 * 1024,
	}
}

// Upload stores the attachment locally and creates its record. The
// after-insert hook offloads to Drive when enabled, so the returned record
// may already carry the rewritten locator.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > h.maxFileSize {
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	isPrivate := c.FormValue("private") == "true"
	entityType := c.FormValue("entity_type")
	entityID := c.FormValue("entity_id")

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	fileURL, err := h.store.Save(src, file.Filename, isPrivate)
	if err != nil {
		logger.Error("Error saving uploaded file: %v", err)
		return response.Error(c, errors.Internal("Failed to store file", err))
	}

	rec := &entity.FileRecord{
		ID:             uuid.New().String(),
		FileName:       file.Filename,
		FileURL:        fileURL,
		IsPrivate:      isPrivate,
		AttachedToType: entityType,
		AttachedToID:   entityID,
	}

	if err := h.files.Create(c.Request().Context(), rec); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, rec)
}

// Serve proxies a private Drive file back to the client as a download.
func (h *AttachmentHandler) Serve(c echo.Context) error {
	fileID := c.QueryParam("file_id")
	fileName := c.QueryParam("file_name")
	if fileName == "" {
		fileName = "download"
	}

	content, err := h.lifecycle.ServeFile(c.Request().Context(), fileID)
	if err != nil {
		logger.Error("Error serving file %s: %v", fileID, err)
		return response.Error(c, err)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	c.Response().Header().Set("Content-Disposition", disposition)
	return c.Stream(http.StatusOK, "application/octet-stream", content)
}

func (h *AttachmentHandler) Get(c echo.Context) error {
	rec, err := h.files.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, rec)
}

// Delete removes the record. The before-delete hook cleans up the Drive copy
// when the configuration asks for it.
func (h *AttachmentHandler) Delete(c echo.Context) error {
	if err := h.files.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "File deleted successfully",
	})
}
