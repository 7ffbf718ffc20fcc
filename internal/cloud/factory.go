// Package cloud wires accounts to their storage provider implementations.
package cloud

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/jodinathan/filedrive/internal/accounts"
	"github.com/jodinathan/filedrive/internal/cloud/providers/azure"
	"github.com/jodinathan/filedrive/internal/cloud/providers/s3"
	"github.com/jodinathan/filedrive/internal/cloud/storage"
	"github.com/jodinathan/filedrive/internal/models"
)

// NewProvider builds a storage.Provider for the account, resolving
// credentials through the account manager. httpClient may be nil.
func NewProvider(ctx context.Context, mgr *accounts.Manager, accountID string, httpClient *nethttp.Client) (storage.Provider, error) {
	acct, err := mgr.Get(accountID)
	if err != nil {
		return nil, err
	}

	credsFn := func(ctx context.Context) (*models.Credentials, error) {
		return mgr.Credentials(ctx, accountID)
	}

	switch acct.Provider {
	case models.ProviderS3:
		client, err := s3.NewClient(ctx, acct, credsFn, httpClient)
		if err != nil {
			return nil, err
		}
		return s3.NewProvider(client), nil
	case models.ProviderAzure:
		client, err := azure.NewClient(ctx, acct, credsFn, httpClient)
		if err != nil {
			return nil, err
		}
		return azure.NewProvider(client), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q for account %s", acct.Provider, accountID)
	}
}
