package repository

import (
	"context"

	"driveattach/internal/domain/entity"
)

// FileRecordHook is invoked by the repository at document lifecycle points.
// Hooks must not fail the surrounding write; anything going wrong inside a
// hook is the hook's own problem to log.
type FileRecordHook func(ctx context.Context, rec *entity.FileRecord)

type FileRecordRepository interface {
	// Create persists a new record and fires the registered after-insert
	// hooks with the in-memory record, so hooks can mirror rewrites onto it.
	Create(ctx context.Context, rec *entity.FileRecord) error

	GetByID(ctx context.Context, id string) (*entity.FileRecord, error)

	// List returns every record, oldest first.
	List(ctx context.Context) ([]*entity.FileRecord, error)

	// UpdateOffloaded rewrites the locator and Drive file id directly,
	// without firing any lifecycle hook. This is the internal write path the
	// offload sequence uses so it cannot re-trigger itself.
	UpdateOffloaded(ctx context.Context, id, fileURL, driveFileID string) error

	// Delete fires the registered before-delete hooks with the stored record,
	// then removes it.
	Delete(ctx context.Context, id string) error

	AfterInsert(hook FileRecordHook)
	BeforeDelete(hook FileRecordHook)
}
