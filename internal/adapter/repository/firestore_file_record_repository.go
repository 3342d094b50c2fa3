package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/pkg/errors"
)

type firestoreFileRecordRepository struct {
	client       *firestore.Client
	afterInsert  []repository.FileRecordHook
	beforeDelete []repository.FileRecordHook
}

func NewFirestoreFileRecordRepository(client *firestore.Client) repository.FileRecordRepository {
	return &firestoreFileRecordRepository{
		client: client,
	}
}

// Hook registration happens during wiring, before the server accepts
// requests.

func (r *firestoreFileRecordRepository) AfterInsert(hook repository.FileRecordHook) {
	r.afterInsert = append(r.afterInsert, hook)
}

func (r *firestoreFileRecordRepository) BeforeDelete(hook repository.FileRecordHook) {
	r.beforeDelete = append(r.beforeDelete, hook)
}

func (r *firestoreFileRecordRepository) Create(ctx context.Context, rec *entity.FileRecord) error {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := r.client.Collection("file_records").Doc(rec.ID).Set(ctx, rec)
	if err != nil {
		return errors.Internal("Failed to create file record", err)
	}

	for _, hook := range r.afterInsert {
		hook(ctx, rec)
	}
	return nil
}

func (r *firestoreFileRecordRepository) GetByID(ctx context.Context, id string) (*entity.FileRecord, error) {
	doc, err := r.client.Collection("file_records").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("File record", err)
		}
		return nil, errors.Internal("Failed to get file record", err)
	}

	var rec entity.FileRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, errors.Internal("Failed to parse file record", err)
	}

	return &rec, nil
}

func (r *firestoreFileRecordRepository) List(ctx context.Context) ([]*entity.FileRecord, error) {
	iter := r.client.Collection("file_records").OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []*entity.FileRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate file records", err)
		}

		var rec entity.FileRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, errors.Internal("Failed to parse file record", err)
		}
		records = append(records, &rec)
	}

	return records, nil
}

// UpdateOffloaded writes the rewritten locator and Drive file id directly.
// No hook fires here, so the offload sequence cannot re-trigger itself.
func (r *firestoreFileRecordRepository) UpdateOffloaded(ctx context.Context, id, fileURL, driveFileID string) error {
	_, err := r.client.Collection("file_records").Doc(id).Update(ctx, []firestore.Update{
		{Path: "fileUrl", Value: fileURL},
		{Path: "driveFileId", Value: driveFileID},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update file record", err)
	}
	return nil
}

func (r *firestoreFileRecordRepository) Delete(ctx context.Context, id string) error {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, hook := range r.beforeDelete {
		hook(ctx, rec)
	}

	if _, err := r.client.Collection("file_records").Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete file record", err)
	}
	return nil
}
