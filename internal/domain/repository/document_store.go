package repository

import "context"

// DocumentStore writes individual fields on business documents that
// attachments are linked to, e.g. propagating a rewritten locator into a
// document's image field.
type DocumentStore interface {
	SetField(ctx context.Context, entityType, entityID, field string, value interface{}) error
}
