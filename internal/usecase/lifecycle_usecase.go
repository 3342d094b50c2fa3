package usecase

import (
	"bytes"
	"context"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/internal/domain/service"
	"driveattach/pkg/errors"
	"driveattach/pkg/logger"
)

// LifecycleUseCase reacts to file record lifecycle events, offloading new
// attachments to Drive and cleaning up remote copies on delete. Hook entry
// points never return errors: a failing offload must not fail the write that
// triggered it.
type LifecycleUseCase struct {
	files       repository.FileRecordRepository
	docs        repository.DocumentStore
	drive       service.DriveService
	configs     *ConfigUseCase
	store       LocalFileStore
	ignoreTypes map[string]bool
	imageFields map[string]string
}

func NewLifecycleUseCase(
	files repository.FileRecordRepository,
	docs repository.DocumentStore,
	drive service.DriveService,
	configs *ConfigUseCase,
	store LocalFileStore,
	ignoreTypes []string,
	imageFields map[string]string,
) *LifecycleUseCase {
	ignored := make(map[string]bool, len(ignoreTypes))
	for _, t := range ignoreTypes {
		ignored[t] = true
	}

	return &LifecycleUseCase{
		files:       files,
		docs:        docs,
		drive:       drive,
		configs:     configs,
		store:       store,
		ignoreTypes: ignored,
		imageFields: imageFields,
	}
}

// OnFileCreated runs the offload sequence for a freshly inserted record.
// Registered as the repository's after-insert hook.
func (uc *LifecycleUseCase) OnFileCreated(ctx context.Context, rec *entity.FileRecord) {
	cfg, err := uc.configs.Get(ctx)
	if err != nil {
		logger.Error("Error loading Drive configuration: %v", err)
		return
	}
	if !cfg.Enabled {
		return
	}

	if rec.FileURL == "" || rec.Offloaded() {
		return
	}

	// Transient artifacts of bulk import jobs stay local.
	if uc.ignoreTypes[rec.AttachedToType] {
		return
	}

	if _, err := uc.offload(ctx, rec); err != nil {
		logger.Error("Error offloading file %s to Drive: %v", rec.ID, err)
	}
}

// offload uploads a record's bytes, rewrites its locator, drops the local
// copy and persists the change through the hook-bypassing write path. A
// missing source file aborts just this record, without an error.
func (uc *LifecycleUseCase) offload(ctx context.Context, rec *entity.FileRecord) (bool, error) {
	if !uc.store.Exists(rec.FileURL, rec.IsPrivate) {
		logger.Error("File not found: %s", rec.FileURL)
		return false, nil
	}

	src, err := uc.store.Open(rec.FileURL, rec.IsPrivate)
	if err != nil {
		logger.Error("Error opening local file %s: %v", rec.FileURL, err)
		return false, nil
	}
	defer src.Close()

	remote, err := uc.drive.Upload(ctx, src, rec.FileName, rec.EntityType(), rec.AttachedToID)
	if err != nil {
		return false, err
	}

	fileURL := remote.WebViewLink
	if rec.IsPrivate {
		fileURL = entity.ServeLocator(remote.ID, rec.FileName)
	}

	// The remote copy is authoritative from here on; a leftover local file
	// is harmless.
	_ = uc.store.Remove(rec.FileURL, rec.IsPrivate)

	if err := uc.files.UpdateOffloaded(ctx, rec.ID, fileURL, remote.ID); err != nil {
		return false, err
	}

	rec.FileURL = fileURL
	rec.DriveFileID = remote.ID

	if field, ok := uc.imageFields[rec.AttachedToType]; ok && rec.AttachedToID != "" {
		if err := uc.docs.SetField(ctx, rec.AttachedToType, rec.AttachedToID, field, fileURL); err != nil {
			logger.Error("Error updating %s field on %s %s: %v", field, rec.AttachedToType, rec.AttachedToID, err)
		}
	}

	return true, nil
}

// OnFileDeleted removes the Drive copy of an offloaded record when the
// configuration asks for it. Registered as the repository's before-delete
// hook. Records that never left local disk cause no remote call.
func (uc *LifecycleUseCase) OnFileDeleted(ctx context.Context, rec *entity.FileRecord) {
	if rec.DriveFileID == "" || !rec.Offloaded() {
		return
	}

	cfg, err := uc.configs.Get(ctx)
	if err != nil {
		logger.Error("Error loading Drive configuration: %v", err)
		return
	}
	if !cfg.DeleteFromDrive {
		return
	}

	if err := uc.drive.Delete(ctx, rec.DriveFileID); err != nil {
		logger.Error("Error deleting file %s from Drive: %v", rec.DriveFileID, err)
	}
}

// ServeFile fetches an offloaded file's content for the proxy endpoint.
// Unlike the hooks, failures here surface to the caller.
func (uc *LifecycleUseCase) ServeFile(ctx context.Context, fileID string) (*bytes.Reader, error) {
	if fileID == "" {
		return nil, errors.BadRequest("File ID is required", nil)
	}
	return uc.drive.Download(ctx, fileID)
}

type MigrationResult struct {
	Migrated int `json:"migrated"`
	Errors   int `json:"errors"`
	Total    int `json:"total"`
}

// MigrateExisting offloads every record still carrying a local locator,
// strictly sequentially. A single record's failure is counted and the batch
// moves on.
func (uc *LifecycleUseCase) MigrateExisting(ctx context.Context) (*MigrationResult, error) {
	records, err := uc.files.List(ctx)
	if err != nil {
		return nil, errors.Internal("Error listing files for migration", err)
	}

	result := &MigrationResult{}
	for _, rec := range records {
		if rec.FileURL == "" || rec.Offloaded() {
			continue
		}

		result.Total++
		if _, err := uc.offload(ctx, rec); err != nil {
			result.Errors++
			logger.Error("Error migrating file %s: %v", rec.ID, err)
			continue
		}
		result.Migrated++
	}

	return result, nil
}
