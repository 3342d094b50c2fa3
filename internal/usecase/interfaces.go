package usecase

import (
	"context"
	"io"

	"golang.org/x/oauth2"
)

// LocalFileStore abstracts the on-disk attachment storage the offload
// sequence drains.
type LocalFileStore interface {
	Exists(fileURL string, isPrivate bool) bool
	Open(fileURL string, isPrivate bool) (io.ReadCloser, error)
	Remove(fileURL string, isPrivate bool) error
	Save(content io.Reader, fileName string, isPrivate bool) (string, error)
}

// DriveAuthorizer is the OAuth consent and code exchange helper.
type DriveAuthorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}
