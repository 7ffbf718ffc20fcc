package models

import "time"

// FileItem represents a single entry shown by the picker: a file or a folder
// inside a cloud account.
type FileItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"` // provider path, forward slashes
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType,omitempty"`
	Modified     time.Time `json:"modified,omitempty"`
	IsFolder     bool      `json:"isFolder"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Checksum     string    `json:"checksum,omitempty"` // hex MD5/ETag when the provider reports one
}

// ListPage is one page of a folder listing.
type ListPage struct {
	Items     []FileItem `json:"items"`
	NextToken string     `json:"nextToken,omitempty"`
}

// UploadResult describes a completed upload.
type UploadResult struct {
	Item     FileItem      `json:"item"`
	Duration time.Duration `json:"duration"`
	Retries  int           `json:"retries"`
}
