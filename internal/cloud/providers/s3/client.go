// Package s3 provides the S3 implementation of the storage.Provider
// interface.
package s3

import (
	"context"
	"fmt"
	nethttp "net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jodinathan/filedrive/internal/models"
)

// CredentialsFunc resolves fresh storage credentials for the account.
// accounts.Manager.Credentials curried with the account ID satisfies it.
type CredentialsFunc func(ctx context.Context) (*models.Credentials, error)

// Client wraps the AWS S3 client with credential refresh and a shared HTTP
// connection pool.
//
// Thread-safe: the underlying client is swapped under a mutex when
// credentials rotate, and the HTTP client is reused across swaps to keep
// the connection pool warm.
type Client struct {
	account    *models.Account
	credsFn    CredentialsFunc
	httpClient *nethttp.Client

	mu     sync.Mutex
	client *s3.Client
	creds  *models.Credentials
}

// NewClient creates an S3 client for the account. httpClient may be nil.
func NewClient(ctx context.Context, account *models.Account, credsFn CredentialsFunc, httpClient *nethttp.Client) (*Client, error) {
	if account == nil {
		return nil, fmt.Errorf("account is required")
	}
	if credsFn == nil {
		return nil, fmt.Errorf("credentials resolver is required")
	}

	c := &Client{
		account:    account,
		credsFn:    credsFn,
		httpClient: httpClient,
	}
	if err := c.EnsureFreshCredentials(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// S3 returns the current underlying client.
func (c *Client) S3() *s3.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Bucket returns the bucket this client operates on.
func (c *Client) Bucket() string {
	return c.account.Container
}

// EnsureFreshCredentials rebuilds the S3 client when credentials are absent
// or near expiry. The HTTP client is reused so the connection pool survives
// the swap.
func (c *Client) EnsureFreshCredentials(ctx context.Context) error {
	creds, err := c.credsFn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get credentials for account %s: %w", c.account.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.creds == creds {
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.account.Region),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretKey,
			creds.SessionToken,
		)),
	}
	if c.httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(c.httpClient))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	c.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.account.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.account.Endpoint)
			o.UsePathStyle = true // MinIO-style endpoints require path addressing
		}
	})
	c.creds = creds

	return nil
}
