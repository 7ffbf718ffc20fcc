// Package storage provides common interfaces and utilities for cloud storage
// operations. It defines the contract that the S3 and Azure implementations
// follow, so the picker core and the transfer engine never depend on a
// concrete backend.
package storage

import (
	"context"

	"github.com/jodinathan/filedrive/internal/models"
)

// ProgressFunc receives transfer progress as a fraction from 0.0 to 1.0.
type ProgressFunc func(fraction float64)

// Lister lists folder contents for the picker.
type Lister interface {
	// List returns one page of entries under the given folder path.
	// An empty pageToken starts from the beginning; the returned page
	// carries the token for the next call, empty when exhausted.
	List(ctx context.Context, folder, pageToken string) (models.ListPage, error)
}

// Uploader uploads local files into the account.
type Uploader interface {
	// Upload stores the local file under folder, reporting progress.
	// progress may be nil.
	Upload(ctx context.Context, localPath, folder string, progress ProgressFunc) (models.FileItem, error)
}

// Downloader fetches a picked file to a local path.
type Downloader interface {
	// Download writes the item's content to localPath, reporting progress.
	// progress may be nil.
	Download(ctx context.Context, item models.FileItem, localPath string, progress ProgressFunc) error
}

// CredentialRefresher refreshes short-lived storage credentials before they
// expire. Implementations are safe for concurrent use.
type CredentialRefresher interface {
	EnsureFreshCredentials(ctx context.Context) error
}

// Provider is the full contract a storage backend implements.
type Provider interface {
	Lister
	Uploader
	Downloader
	CredentialRefresher

	// Info describes the backend for display.
	Info() models.ProviderInfo
}
