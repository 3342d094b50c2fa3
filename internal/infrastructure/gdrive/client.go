package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"driveattach/internal/domain/entity"
	"driveattach/pkg/errors"
	"driveattach/pkg/logger"
)

// ConfigSource yields the current Drive configuration. Reads go through the
// cached accessor, so building a client per request stays cheap.
type ConfigSource interface {
	Get(ctx context.Context) (*entity.DriveConfig, error)
}

// Client talks to the Drive API on behalf of the configured account. It holds
// no state beyond the OAuth helper and the configuration source.
type Client struct {
	oauth   *OAuth
	configs ConfigSource
}

func NewClient(oauth *OAuth, configs ConfigSource) *Client {
	return &Client{
		oauth:   oauth,
		configs: configs,
	}
}

func (c *Client) service(ctx context.Context) (*drive.Service, *entity.DriveConfig, error) {
	cfg, err := c.configs.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Enabled {
		return nil, nil, errors.BadRequest("Drive upload is disabled in configuration", nil)
	}
	if !cfg.HasAuthorization() {
		return nil, nil, errors.BadRequest("Drive access is not authorized; generate a refresh token first", nil)
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(c.oauth.TokenSource(ctx, cfg.RefreshToken)))
	if err != nil {
		return nil, nil, errors.Internal("Failed to initialize Drive service", err)
	}

	return svc, cfg, nil
}

func (c *Client) Upload(ctx context.Context, content io.Reader, fileName, entityType, entityID string) (*entity.RemoteFile, error) {
	svc, cfg, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	name := BuildUploadName(fileName, entityType, entityID)
	mimeType, body := sniffMimeType(name, content)

	description := fmt.Sprintf("Uploaded from %s", entityType)
	if entityID != "" {
		description = fmt.Sprintf("Uploaded from %s: %s", entityType, entityID)
	}

	file := &drive.File{
		Name:        name,
		Parents:     []string{cfg.UploadFolderID()},
		Description: description,
	}

	created, err := svc.Files.Create(file).
		Media(body, googleapi.ContentType(mimeType)).
		Fields("id", "name", "webViewLink", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("Error uploading file to Drive: %v", err), err)
	}

	c.applySharing(ctx, svc, cfg, created.Id)

	return &entity.RemoteFile{
		ID:             created.Id,
		Name:           created.Name,
		MimeType:       mimeType,
		WebViewLink:    created.WebViewLink,
		WebContentLink: created.WebContentLink,
	}, nil
}

// applySharing places the configured grant on a freshly uploaded file. Grant
// failures are logged and never fail the upload; for specific recipients a
// failed grant does not stop the remaining ones.
func (c *Client) applySharing(ctx context.Context, svc *drive.Service, cfg *entity.DriveConfig, fileID string) {
	grant := func(p *drive.Permission) error {
		_, err := svc.Permissions.Create(fileID, p).Context(ctx).Do()
		return err
	}
	shareWith(cfg, grant)
}

func shareWith(cfg *entity.DriveConfig, grant func(*drive.Permission) error) {
	switch cfg.SharingPermission {
	case entity.SharingLinkView:
		if err := grant(&drive.Permission{Type: "anyone", Role: "reader"}); err != nil {
			logger.Error("Error setting link-view permission: %v", err)
		}
	case entity.SharingLinkEdit:
		if err := grant(&drive.Permission{Type: "anyone", Role: "writer"}); err != nil {
			logger.Error("Error setting link-edit permission: %v", err)
		}
	case entity.SharingSpecificPeople:
		for _, email := range cfg.Recipients() {
			if err := grant(&drive.Permission{Type: "user", Role: "reader", EmailAddress: email}); err != nil {
				logger.Error("Error granting read access to %s: %v", email, err)
			}
		}
	}
}

// Download fetches the file content in full and returns it positioned at the
// start.
func (c *Client) Download(ctx context.Context, fileID string) (*bytes.Reader, error) {
	svc, _, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("Error downloading file from Drive: %v", err), err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, errors.Internal("Error reading file content from Drive", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}

// GetMetadata returns nil without an error when the lookup fails; callers
// treat an absent file as a null result, not a failure.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (*entity.RemoteFile, error) {
	svc, _, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	info, err := svc.Files.Get(fileID).
		Fields("id", "name", "mimeType", "size", "webViewLink", "webContentLink", "createdTime", "modifiedTime").
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("Error getting Drive file info for %s: %v", fileID, err)
		return nil, nil
	}

	return &entity.RemoteFile{
		ID:             info.Id,
		Name:           info.Name,
		MimeType:       info.MimeType,
		Size:           info.Size,
		WebViewLink:    info.WebViewLink,
		WebContentLink: info.WebContentLink,
		CreatedTime:    info.CreatedTime,
		ModifiedTime:   info.ModifiedTime,
	}, nil
}

func (c *Client) Delete(ctx context.Context, fileID string) error {
	svc, _, err := c.service(ctx)
	if err != nil {
		return err
	}

	if err := svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return errors.Internal(fmt.Sprintf("Error deleting file from Drive: %v", err), err)
	}
	return nil
}

// TestConnection lists a single file to verify authorization end to end.
func (c *Client) TestConnection(ctx context.Context) error {
	svc, _, err := c.service(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Files.List().PageSize(1).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return errors.Internal(fmt.Sprintf("Drive connection test failed: %v", err), err)
	}
	return nil
}
