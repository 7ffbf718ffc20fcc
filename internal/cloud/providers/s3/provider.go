package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/models"
)

// Provider implements storage.Provider on top of an S3 bucket.
type Provider struct {
	client *Client
}

// NewProvider wraps an S3 client as a storage.Provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Info describes the backend.
func (p *Provider) Info() models.ProviderInfo {
	return models.ProviderInfo{
		Kind:        models.ProviderS3,
		DisplayName: "Amazon S3",
		CanUpload:   true,
		CanDownload: true,
	}
}

// EnsureFreshCredentials refreshes the underlying client credentials.
func (p *Provider) EnsureFreshCredentials(ctx context.Context) error {
	return p.client.EnsureFreshCredentials(ctx)
}

// List returns one page of entries under folder. Folders are synthesized
// from common prefixes using "/" as delimiter.
func (p *Provider) List(ctx context.Context, folder, pageToken string) (models.ListPage, error) {
	prefix := folderPrefix(folder)

	input := &awss3.ListObjectsV2Input{
		Bucket:    aws.String(p.client.Bucket()),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(constants.ListPageSize),
	}
	if pageToken != "" {
		input.ContinuationToken = aws.String(pageToken)
	}

	var resp *awss3.ListObjectsV2Output
	err := p.withRetry(ctx, "ListObjectsV2", func() error {
		var err error
		resp, err = p.client.S3().ListObjectsV2(ctx, input)
		return err
	})
	if err != nil {
		return models.ListPage{}, fmt.Errorf("failed to list s3://%s/%s: %w", p.client.Bucket(), prefix, err)
	}

	page := models.ListPage{}
	for _, cp := range resp.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
		if name == "" {
			continue
		}
		page.Items = append(page.Items, models.FileItem{
			ID:       aws.ToString(cp.Prefix),
			Name:     name,
			Path:     strings.TrimSuffix(aws.ToString(cp.Prefix), "/"),
			IsFolder: true,
		})
	}
	for _, obj := range resp.Contents {
		key := aws.ToString(obj.Key)
		if key == prefix {
			continue // the folder placeholder object itself
		}
		item := models.FileItem{
			ID:       key,
			Name:     path.Base(key),
			Path:     key,
			Size:     aws.ToInt64(obj.Size),
			Checksum: strings.Trim(aws.ToString(obj.ETag), `"`),
		}
		if obj.LastModified != nil {
			item.Modified = *obj.LastModified
		}
		page.Items = append(page.Items, item)
	}

	if aws.ToBool(resp.IsTruncated) {
		page.NextToken = aws.ToString(resp.NextContinuationToken)
	}

	return page, nil
}

// Upload stores a local file under folder. Files above the multipart
// threshold use multipart upload with per-part progress.
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

	key := folderPrefix(folder) + path.Base(localPath)

	if info.Size() >= constants.MultipartThreshold {
		err = p.uploadMultipart(ctx, f, key, info.Size(), progress)
	} else {
		err = p.uploadSingle(ctx, f, key, info.Size(), progress)
	}
	if err != nil {
		return models.FileItem{}, err
	}

	if progress != nil {
		progress(1.0)
	}

	return models.FileItem{
		ID:       key,
		Name:     path.Base(key),
		Path:     key,
		Size:     info.Size(),
		Modified: time.Now(),
	}, nil
}

// uploadSingle does a plain PutObject.
func (p *Provider) uploadSingle(ctx context.Context, f *os.File, key string, size int64, progress storage.ProgressFunc) error {
	return p.withRetry(ctx, "PutObject", func() error {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := p.client.S3().PutObject(ctx, &awss3.PutObjectInput{
			Bucket:        aws.String(p.client.Bucket()),
			Key:           aws.String(key),
			Body:          f,
			ContentLength: aws.Int64(size),
		})
		return err
	})
}

// uploadMultipart streams the file in ChunkSize parts, reporting progress
// after each committed part.
func (p *Provider) uploadMultipart(ctx context.Context, f *os.File, key string, size int64, progress storage.ProgressFunc) error {
	create, err := p.client.S3().CreateMultipartUpload(ctx, &awss3.CreateMultipartUploadInput{
		Bucket: aws.String(p.client.Bucket()),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to start multipart upload: %w", err)
	}
	uploadID := create.UploadId

	abort := func() {
		_, _ = p.client.S3().AbortMultipartUpload(context.Background(), &awss3.AbortMultipartUploadInput{
			Bucket:   aws.String(p.client.Bucket()),
			Key:      aws.String(key),
			UploadId: uploadID,
		})
	}

	var completed []types.CompletedPart
	buf := make([]byte, constants.ChunkSize)
	var uploaded int64

	for partNum := int32(1); uploaded < size; partNum++ {
		n, readErr := io.ReadFull(f, buf)
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			readErr = nil
		}
		if readErr != nil {
			abort()
			return fmt.Errorf("failed to read part %d: %w", partNum, readErr)
		}
		if n == 0 {
			break
		}

		part := buf[:n]
		var etag *string
		err := p.withRetry(ctx, fmt.Sprintf("UploadPart %d", partNum), func() error {
			resp, err := p.client.S3().UploadPart(ctx, &awss3.UploadPartInput{
				Bucket:        aws.String(p.client.Bucket()),
				Key:           aws.String(key),
				UploadId:      uploadID,
				PartNumber:    aws.Int32(partNum),
				Body:          bytes.NewReader(part),
				ContentLength: aws.Int64(int64(n)),
			})
			if err != nil {
				return err
			}
			etag = resp.ETag
			return nil
		})
		if err != nil {
			abort()
			return err
		}

		completed = append(completed, types.CompletedPart{
			ETag:       etag,
			PartNumber: aws.Int32(partNum),
		})
		uploaded += int64(n)
		if progress != nil {
			progress(float64(uploaded) / float64(size))
		}
	}

	_, err = p.client.S3().CompleteMultipartUpload(ctx, &awss3.CompleteMultipartUploadInput{
		Bucket:   aws.String(p.client.Bucket()),
		Key:      aws.String(key),
		UploadId: uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		abort()
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}
	return nil
}

// Download writes the object's content to localPath.
func (p *Provider) Download(ctx context.Context, item models.FileItem, localPath string, progress storage.ProgressFunc) error {
	var resp *awss3.GetObjectOutput
	err := p.withRetry(ctx, "GetObject", func() error {
		var err error
		resp, err = p.client.S3().GetObject(ctx, &awss3.GetObjectInput{
			Bucket: aws.String(p.client.Bucket()),
			Key:    aws.String(item.Path),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get s3://%s/%s: %w", p.client.Bucket(), item.Path, err)
	}
	defer resp.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer out.Close()

	total := aws.ToInt64(resp.ContentLength)
	if total == 0 {
		total = item.Size
	}

	return copyWithProgress(out, resp.Body, total, progress)
}

// withRetry retries transient failures with exponential backoff, refreshing
// credentials when the error is credential-shaped.
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

// folderPrefix normalizes a picker folder path into a key prefix.
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}
