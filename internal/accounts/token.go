package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/models"
)

// tokenResponse is the JSON body returned by an account's token endpoint.
type tokenResponse struct {
	AccessKeyID  string `json:"accessKeyId,omitempty"`
	SecretKey    string `json:"secretKey,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
	SASToken     string `json:"sasToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"` // seconds
	Expiry       string `json:"expiry,omitempty"`    // RFC 3339, wins over expiresIn
}

// TokenSource fetches and caches short-lived storage credentials for one
// account. Safe for concurrent use: overlapping refreshes collapse into one
// request.
type TokenSource struct {
	account *models.Account
	secrets SecretStore
	client  *retryablehttp.Client

	mu    sync.Mutex
	creds *models.Credentials
}

// NewTokenSource creates a token source for the account. httpClient may be
// nil, in which case a default transport is used.
func NewTokenSource(account *models.Account, secrets SecretStore, httpClient *http.Client) *TokenSource {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = constants.RetryInitialDelay
	rc.RetryWaitMax = constants.RetryMaxDelay
	rc.Logger = nil // routed through zerolog by callers that care
	if httpClient != nil {
		rc.HTTPClient = httpClient
	}
	rc.HTTPClient.Timeout = constants.TokenRequestTimeout

	return &TokenSource{
		account: account,
		secrets: secrets,
		client:  rc,
	}
}

// Credentials returns cached credentials, refreshing them when absent or
// inside the refresh window.
func (ts *TokenSource) Credentials(ctx context.Context) (*models.Credentials, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.creds != nil && !ts.creds.Expired(constants.TokenRefreshWindow) {
		return ts.creds, nil
	}

	creds, err := ts.fetch(ctx)
	if err != nil {
		return nil, err
	}
	ts.creds = creds
	return creds, nil
}

// Invalidate drops the cached credentials, forcing the next call to fetch.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.creds = nil
}

// fetch calls the account's token endpoint with the stored refresh secret.
func (ts *TokenSource) fetch(ctx context.Context) (*models.Credentials, error) {
	if ts.account.TokenURL == "" {
		return nil, fmt.Errorf("account %s has no token endpoint", ts.account.ID)
	}

	secret, err := ts.secrets.Get(ts.account.ID)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", ts.account.ID, err)
	}

	body := strings.NewReader(fmt.Sprintf(`{"accountId":%q}`, ts.account.ID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, ts.account.TokenURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request for account %s failed: %w", ts.account.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %s for account %s", resp.Status, ts.account.ID)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	creds := &models.Credentials{
		AccessKeyID:  tr.AccessKeyID,
		SecretKey:    tr.SecretKey,
		SessionToken: tr.SessionToken,
		SASToken:     tr.SASToken,
	}
	switch {
	case tr.Expiry != "":
		expiry, err := time.Parse(time.RFC3339, tr.Expiry)
		if err != nil {
			return nil, fmt.Errorf("token endpoint returned bad expiry %q: %w", tr.Expiry, err)
		}
		creds.Expiry = expiry
	case tr.ExpiresIn > 0:
		creds.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return creds, nil
}
