package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"driveattach/internal/domain/repository"
	"driveattach/pkg/errors"
)

// firestoreDocumentStore writes onto owning business documents, collection
// per entity type.
type firestoreDocumentStore struct {
	client *firestore.Client
}

func NewFirestoreDocumentStore(client *firestore.Client) repository.DocumentStore {
	return &firestoreDocumentStore{
		client: client,
	}
}

func (s *firestoreDocumentStore) SetField(ctx context.Context, entityType, entityID, field string, value interface{}) error {
	_, err := s.client.Collection(entityType).Doc(entityID).Update(ctx, []firestore.Update{
		{Path: field, Value: value},
	})
	if err != nil {
		return errors.Internal("Failed to update document field", err)
	}
	return nil
}
