package repository

import (
	"context"

	"driveattach/internal/domain/entity"
)

type DriveConfigRepository interface {
	// Get returns the singleton configuration record, or a NOT_FOUND error
	// when none has been created yet.
	Get(ctx context.Context) (*entity.DriveConfig, error)

	Save(ctx context.Context, cfg *entity.DriveConfig) error

	// Update merges individual fields into the stored record, leaving the
	// rest untouched.
	Update(ctx context.Context, fields map[string]interface{}) error
}
