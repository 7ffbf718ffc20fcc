package azure

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/models"
)

// Provider implements storage.Provider on top of an Azure blob container.
type Provider struct {
	client *Client
}

// NewProvider wraps an Azure client as a storage.Provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Info describes the backend.
func (p *Provider) Info() models.ProviderInfo {
	return models.ProviderInfo{
		Kind:        models.ProviderAzure,
		DisplayName: "Azure Blob Storage",
		CanUpload:   true,
		CanDownload: true,
	}
}

// EnsureFreshCredentials refreshes the underlying SAS token.
func (p *Provider) EnsureFreshCredentials(ctx context.Context) error {
	return p.client.EnsureFreshCredentials(ctx)
}

// List returns one page of entries under folder using hierarchy listing with
// "/" as delimiter. Blob prefixes become folders.
func (p *Provider) List(ctx context.Context, folder, pageToken string) (models.ListPage, error) {
	prefix := folderPrefix(folder)

	opts := &container.ListBlobsHierarchyOptions{
		Prefix:     to.Ptr(prefix),
		MaxResults: to.Ptr(int32(constants.ListPageSize)),
	}
	if pageToken != "" {
		opts.Marker = to.Ptr(pageToken)
	}

	var page models.ListPage
	err := p.withRetry(ctx, "ListBlobs", func() error {
		containerClient := p.client.Blob().ServiceClient().NewContainerClient(p.client.Container())
		pager := containerClient.NewListBlobsHierarchyPager("/", opts)

		resp, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}

		page = models.ListPage{}
		if resp.Segment != nil {
			for _, bp := range resp.Segment.BlobPrefixes {
				if bp.Name == nil {
					continue
				}
				name := strings.TrimSuffix(strings.TrimPrefix(*bp.Name, prefix), "/")
				if name == "" {
					continue
				}
				page.Items = append(page.Items, models.FileItem{
					ID:       *bp.Name,
					Name:     name,
					Path:     strings.TrimSuffix(*bp.Name, "/"),
					IsFolder: true,
				})
			}
			for _, blob := range resp.Segment.BlobItems {
				if blob.Name == nil || *blob.Name == prefix {
					continue
				}
				item := models.FileItem{
					ID:   *blob.Name,
					Name: path.Base(*blob.Name),
					Path: *blob.Name,
				}
				if blob.Properties != nil {
					if blob.Properties.ContentLength != nil {
						item.Size = *blob.Properties.ContentLength
					}
					if blob.Properties.LastModified != nil {
						item.Modified = *blob.Properties.LastModified
					}
					if blob.Properties.ContentType != nil {
						item.MimeType = *blob.Properties.ContentType
					}
					if blob.Properties.ETag != nil {
						item.Checksum = strings.Trim(string(*blob.Properties.ETag), `"`)
					}
				}
				page.Items = append(page.Items, item)
			}
		}

		if resp.NextMarker != nil && *resp.NextMarker != "" {
			page.NextToken = *resp.NextMarker
		}
		return nil
	})
	if err != nil {
		return models.ListPage{}, fmt.Errorf("failed to list %s/%s: %w", p.client.Container(), prefix, err)
	}

	return page, nil
}

// Upload stores a local file under folder. Files above the multipart
// threshold are staged as blocks and committed at the end.
func (p *Provider) Upload(ctx context.Context, localPath, folder string, progress storage.ProgressFunc) (models.FileItem, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return models.FileItem{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.FileItem{}, err
	}

	blobPath := folderPrefix(folder) + path.Base(localPath)

	if info.Size() >= constants.MultipartThreshold {
		err = p.uploadBlocks(ctx, f, blobPath, info.Size(), progress)
	} else {
		err = p.uploadSingle(ctx, f, blobPath, progress)
	}
	if err != nil {
		return models.FileItem{}, err
	}

	if progress != nil {
		progress(1.0)
	}

	return models.FileItem{
		ID:       blobPath,
		Name:     path.Base(blobPath),
		Path:     blobPath,
		Size:     info.Size(),
		Modified: time.Now(),
	}, nil
}

// uploadSingle uploads the whole file in one block blob request.
func (p *Provider) uploadSingle(ctx context.Context, f *os.File, blobPath string, progress storage.ProgressFunc) error {
	return p.withRetry(ctx, "Upload", func() error {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := p.blockBlobClient(blobPath).Upload(ctx, f, nil)
		return err
	})
}

// uploadBlocks stages the file in ChunkSize blocks and commits the block
// list. Block IDs must be base64 and the same length for every block.
func (p *Provider) uploadBlocks(ctx context.Context, f *os.File, blobPath string, size int64, progress storage.ProgressFunc) error {
	buf := make([]byte, constants.ChunkSize)
	var blockIDs []string
	var uploaded int64

	for partIndex := 0; uploaded < size; partIndex++ {
		n, readErr := io.ReadFull(f, buf)
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			readErr = nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read block %d: %w", partIndex, readErr)
		}
		if n == 0 {
			break
		}

		blockID := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("block-%010d", partIndex)))
		part := make([]byte, n)
		copy(part, buf[:n])

		err := p.withRetry(ctx, fmt.Sprintf("StageBlock %d", partIndex), func() error {
			reader := &readSeekCloser{Reader: bytes.NewReader(part)}
			_, err := p.blockBlobClient(blobPath).StageBlock(ctx, blockID, reader, nil)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to stage block %d: %w", partIndex, err)
		}

		blockIDs = append(blockIDs, blockID)
		uploaded += int64(n)
		if progress != nil {
			progress(float64(uploaded) / float64(size))
		}
	}

	err := p.withRetry(ctx, "CommitBlockList", func() error {
		_, err := p.blockBlobClient(blobPath).CommitBlockList(ctx, blockIDs, &blockblob.CommitBlockListOptions{})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to commit block list: %w", err)
	}
	return nil
}

// Download writes the blob's content to localPath.
func (p *Provider) Download(ctx context.Context, item models.FileItem, localPath string, progress storage.ProgressFunc) error {
	var resp azblob.DownloadStreamResponse
	err := p.withRetry(ctx, "DownloadStream", func() error {
		blobClient := p.client.Blob().ServiceClient().NewContainerClient(p.client.Container()).NewBlobClient(item.Path)
		var err error
		resp, err = blobClient.DownloadStream(ctx, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to download %s/%s: %w", p.client.Container(), item.Path, err)
	}
	defer resp.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer out.Close()

	total := item.Size
	if resp.ContentLength != nil && *resp.ContentLength > 0 {
		total = *resp.ContentLength
	}

	return copyWithProgress(out, resp.Body, total, progress)
}

// blockBlobClient returns a block blob client for the path using the current
// (possibly refreshed) client.
func (p *Provider) blockBlobClient(blobPath string) *blockblob.Client {
	return p.client.Blob().ServiceClient().NewContainerClient(p.client.Container()).NewBlockBlobClient(blobPath)
}

// withRetry retries transient failures with exponential backoff, refreshing
// the SAS token when the error is credential-shaped.
func (p *Provider) withRetry(ctx context.Context, op string, fn func() error) error {
	delay := constants.RetryInitialDelay
	var err error

	for attempt := 0; attempt <= constants.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > constants.RetryMaxDelay {
				delay = constants.RetryMaxDelay
			}
		}

		err = fn()
		if err == nil {
			return nil
		}

		if storage.IsCredentialError(err) {
			if refreshErr := p.client.EnsureFreshCredentials(ctx); refreshErr != nil {
				return fmt.Errorf("%s: %w (credential refresh also failed: %v)", op, err, refreshErr)
			}
			continue
		}
		if !storage.IsNetworkError(err) {
			return err
		}
	}

	return fmt.Errorf("%s failed after %d retries: %w", op, constants.MaxRetries, err)
}

// copyWithProgress copies src to dst, reporting fractional progress.
func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress storage.ProgressFunc) error {
	buf := make([]byte, 1024*1024)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				if storage.IsDiskFullError(writeErr) {
					return fmt.Errorf("%w: %v", storage.ErrInsufficientSpace, writeErr)
				}
				return writeErr
			}
			written += int64(n)
			if progress != nil && total > 0 {
				progress(float64(written) / float64(total))
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// readSeekCloser adapts a bytes.Reader to io.ReadSeekCloser for StageBlock.
type readSeekCloser struct {
	*bytes.Reader
}

func (r *readSeekCloser) Close() error { return nil }

// folderPrefix normalizes a picker folder path into a blob name prefix.
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}
