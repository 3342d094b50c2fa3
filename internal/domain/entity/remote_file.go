package entity

// RemoteFile mirrors the Drive-side metadata of an offloaded attachment. Only
// the ID is persisted locally, on the owning FileRecord.
type RemoteFile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mime_type,omitempty"`
	Size           int64  `json:"size,omitempty"`
	WebViewLink    string `json:"web_view_link,omitempty"`
	WebContentLink string `json:"web_content_link,omitempty"`
	CreatedTime    string `json:"created_time,omitempty"`
	ModifiedTime   string `json:"modified_time,omitempty"`
}
