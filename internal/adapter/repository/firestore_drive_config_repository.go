package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/pkg/errors"
)

// The configuration is a singleton, stored under a fixed document name.
const configDocName = "drive_attachment_config"

type firestoreDriveConfigRepository struct {
	client *firestore.Client
}

func NewFirestoreDriveConfigRepository(client *firestore.Client) repository.DriveConfigRepository {
	return &firestoreDriveConfigRepository{
		client: client,
	}
}

func (r *firestoreDriveConfigRepository) Get(ctx context.Context) (*entity.DriveConfig, error) {
	doc, err := r.client.Collection("settings").Doc(configDocName).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Drive configuration", err)
		}
		return nil, errors.Internal("Failed to get Drive configuration", err)
	}

	var cfg entity.DriveConfig
	if err := doc.DataTo(&cfg); err != nil {
		return nil, errors.Internal("Failed to parse Drive configuration", err)
	}

	return &cfg, nil
}

func (r *firestoreDriveConfigRepository) Save(ctx context.Context, cfg *entity.DriveConfig) error {
	cfg.UpdatedAt = time.Now()
	_, err := r.client.Collection("settings").Doc(configDocName).Set(ctx, cfg)
	if err != nil {
		return errors.Internal("Failed to save Drive configuration", err)
	}
	return nil
}

func (r *firestoreDriveConfigRepository) Update(ctx context.Context, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now()
	_, err := r.client.Collection("settings").Doc(configDocName).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update Drive configuration", err)
	}
	return nil
}
