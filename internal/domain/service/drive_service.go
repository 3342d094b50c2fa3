package service

import (
	"bytes"
	"context"
	"io"

	"driveattach/internal/domain/entity"
)

type DriveService interface {
	// Upload creates the file on Drive inside the configured folder and
	// applies the configured sharing policy. The returned RemoteFile carries
	// the Drive id and both link variants.
	Upload(ctx context.Context, content io.Reader, fileName, entityType, entityID string) (*entity.RemoteFile, error)

	// Download fetches the full file content, positioned at its start.
	Download(ctx context.Context, fileID string) (*bytes.Reader, error)

	// GetMetadata returns nil (not an error) when the lookup fails.
	GetMetadata(ctx context.Context, fileID string) (*entity.RemoteFile, error)

	Delete(ctx context.Context, fileID string) error

	TestConnection(ctx context.Context) error
}
