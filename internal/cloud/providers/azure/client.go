// Package azure provides the Azure Blob Storage implementation of the
// storage.Provider interface.
package azure

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/jodinathan/filedrive/internal/models"
)

// CredentialsFunc resolves fresh storage credentials for the account.
type CredentialsFunc func(ctx context.Context) (*models.Credentials, error)

// Client wraps the azblob client with SAS token refresh and a shared HTTP
// connection pool.
//
// Thread-safe: the underlying client is recreated under a mutex when the SAS
// token rotates, and the HTTP transport is reused across swaps to keep the
// connection pool warm.
type Client struct {
	account    *models.Account
	credsFn    CredentialsFunc
	httpClient *nethttp.Client

	mu     sync.Mutex
	client *azblob.Client
}

// NewClient creates an Azure blob client for the account. httpClient may be
// nil, in which case the SDK default transport is used.
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

// Blob returns the current underlying client.
func (c *Client) Blob() *azblob.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// Container returns the container this client operates on.
func (c *Client) Container() string {
	return c.account.Container
}

// EnsureFreshCredentials rebuilds the blob client with a fresh SAS token.
// The HTTP transport is reused so the connection pool survives the swap.
func (c *Client) EnsureFreshCredentials(ctx context.Context) error {
	creds, err := c.credsFn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get credentials for account %s: %w", c.account.ID, err)
	}
	if creds.SASToken == "" {
		return fmt.Errorf("account %s has no SAS token", c.account.ID)
	}

	sasURL, err := buildSASURL(c.account, creds)
	if err != nil {
		return err
	}

	opts := &azblob.ClientOptions{}
	if c.httpClient != nil {
		opts.ClientOptions = azcore.ClientOptions{
			Transport: c.httpClient,
		}
	}

	client, err := azblob.NewClientWithNoCredential(sasURL, opts)
	if err != nil {
		return fmt.Errorf("failed to create Azure client: %w", err)
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	return nil
}

// buildSASURL constructs the service-level SAS URL from the account and
// credentials. An explicit endpoint on the account overrides the default
// blob.core.windows.net host (Azurite and sovereign clouds).
func buildSASURL(account *models.Account, creds *models.Credentials) (string, error) {
	token := strings.TrimPrefix(creds.SASToken, "?")

	if account.Endpoint != "" {
		return fmt.Sprintf("%s/?%s", strings.TrimSuffix(account.Endpoint, "/"), token), nil
	}
	if account.StorageAccount == "" {
		return "", fmt.Errorf("account %s has no storage account name", account.ID)
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/?%s", account.StorageAccount, token), nil
}
