package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// SharingPermission controls what grant is placed on a Drive file right after
// upload.
type SharingPermission string

const (
	SharingDefault        SharingPermission = "default"
	SharingLinkView       SharingPermission = "link_view"
	SharingLinkEdit       SharingPermission = "link_edit"
	SharingSpecificPeople SharingPermission = "specific_people"
)

// DriveConfig is the singleton configuration record for the Drive offload
// feature. It is written by administrators and read (through the cached
// accessor) on every lifecycle event.
type DriveConfig struct {
	Enabled           bool              `json:"enabled" firestore:"enabled"`
	ParentFolderID    string            `json:"parent_folder_id" firestore:"parentFolderId"`
	FolderNamePrefix  string            `json:"folder_prefix" firestore:"folderNamePrefix"`
	SharingPermission SharingPermission `json:"sharing_permission" firestore:"sharingPermission"`
	SpecificEmails    string            `json:"specific_emails" firestore:"specificEmails"`
	DeleteFromDrive   bool              `json:"delete_from_drive" firestore:"deleteFromDrive"`
	RefreshToken      string            `json:"-" firestore:"refreshToken"`
	AuthorizationCode string            `json:"-" firestore:"authorizationCode"`
	UpdatedAt         time.Time         `json:"updated_at,omitempty" firestore:"updatedAt"`
}

var emailValidate = validator.New()

// UploadFolderID returns the Drive folder uploads land in, falling back to
// the Drive root when none is configured.
func (c *DriveConfig) UploadFolderID() string {
	if c.ParentFolderID == "" {
		return "root"
	}
	return c.ParentFolderID
}

func (c *DriveConfig) HasAuthorization() bool {
	return c.RefreshToken != ""
}

// Recipients splits the comma-separated recipient list, dropping empty and
// syntactically invalid entries. Malformed addresses are never submitted to
// the provider.
func (c *DriveConfig) Recipients() []string {
	var recipients []string
	for _, email := range strings.Split(c.SpecificEmails, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if emailValidate.Var(email, "email") != nil {
			continue
		}
		recipients = append(recipients, email)
	}
	return recipients
}

// Validate rejects a specific-people configuration whose recipient list
// contains malformed addresses.
func (c *DriveConfig) Validate() error {
	if c.SharingPermission != SharingSpecificPeople || c.SpecificEmails == "" {
		return nil
	}

	var invalid []string
	for _, email := range strings.Split(c.SpecificEmails, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if emailValidate.Var(email, "email") != nil {
			invalid = append(invalid, email)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid email addresses: %s", strings.Join(invalid, ", "))
	}
	return nil
}
