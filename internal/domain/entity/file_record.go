package entity

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// ServeFilePath is the proxy endpoint that streams private Drive files back
// to the client. Locators for offloaded private files point here.
const ServeFilePath = "/v1/attachments/serve"

// DrivePublicDomain prefixes locators of offloaded public files.
const DrivePublicDomain = "https://drive.google.com"

// remoteLocatorPattern recognizes the two locator forms a record carries once
// its bytes live on Drive: the internal serve reference for private files and
// the direct Drive link for public ones. Matching it is the guard that keeps
// already-offloaded records from being uploaded twice.
var remoteLocatorPattern = regexp.MustCompile(`^(/v1/attachments/serve\?file_id=|https://drive\.google\.com)`)

type FileRecord struct {
	ID             string    `json:"id" firestore:"id"`
	FileName       string    `json:"file_name" firestore:"fileName"`
	FileURL        string    `json:"file_url" firestore:"fileUrl"`
	IsPrivate      bool      `json:"is_private" firestore:"isPrivate"`
	AttachedToType string    `json:"attached_to_type" firestore:"attachedToType"`
	AttachedToID   string    `json:"attached_to_id" firestore:"attachedToId"`
	DriveFileID    string    `json:"drive_file_id,omitempty" firestore:"driveFileId"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" firestore:"updatedAt"`
}

// Offloaded reports whether the record's locator already points at Drive.
func (f *FileRecord) Offloaded() bool {
	return IsRemoteLocator(f.FileURL)
}

// EntityType returns the owning document type, defaulting to "file" for
// attachments that are not linked to any document.
func (f *FileRecord) EntityType() string {
	if f.AttachedToType == "" {
		return "file"
	}
	return f.AttachedToType
}

func IsRemoteLocator(fileURL string) bool {
	return remoteLocatorPattern.MatchString(fileURL)
}

// ServeLocator builds the internal serve-reference locator for a private file
// offloaded to Drive.
func ServeLocator(driveFileID, fileName string) string {
	return fmt.Sprintf("%s?file_id=%s&file_name=%s", ServeFilePath, url.QueryEscape(driveFileID), url.QueryEscape(fileName))
}
