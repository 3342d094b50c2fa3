package handler

import (
	"driveattach/internal/domain/repository"
	"driveattach/internal/domain/service"
	"driveattach/internal/usecase"
)

var (
	attachmentHandler *AttachmentHandler
	driveAdminHandler *DriveAdminHandler
)

func Setup(
	files repository.FileRecordRepository,
	store usecase.LocalFileStore,
	lifecycleUseCase *usecase.LifecycleUseCase,
	authUseCase *usecase.AuthUseCase,
	configUseCase *usecase.ConfigUseCase,
	driveService service.DriveService,
) {
	attachmentHandler = NewAttachmentHandler(files, lifecycleUseCase, store)
	driveAdminHandler = NewDriveAdminHandler(authUseCase, lifecycleUseCase, configUseCase, driveService)
}

func GetAttachmentHandler() *AttachmentHandler {
	return attachmentHandler
}

func GetDriveAdminHandler() *DriveAdminHandler {
	return driveAdminHandler
}
