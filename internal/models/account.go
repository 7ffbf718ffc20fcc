package models

import "time"

// ProviderKind identifies a storage backend type.
type ProviderKind string

const (
	ProviderS3    ProviderKind = "s3"
	ProviderAzure ProviderKind = "azure"
)

// AccountStatus reflects whether an account's credentials are usable.
type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountExpired AccountStatus = "expired"
)

// Account represents a configured cloud account the picker can browse.
type Account struct {
	ID          string        `json:"id"`
	Provider    ProviderKind  `json:"provider"`
	DisplayName string        `json:"displayName"`
	Email       string        `json:"email,omitempty"`
	RootPath    string        `json:"rootPath,omitempty"`
	Status      AccountStatus `json:"status"`

	// Connection settings. Which fields apply depends on Provider.
	Region         string `json:"region,omitempty"`         // S3
	Container      string `json:"container"`                // S3 bucket or Azure container
	StorageAccount string `json:"storageAccount,omitempty"` // Azure account name
	Endpoint       string `json:"endpoint,omitempty"`       // custom S3 endpoint, empty for AWS

	// TokenURL is the endpoint used to refresh short-lived storage
	// credentials for this account. Empty when credentials are static.
	TokenURL string `json:"tokenUrl,omitempty"`
}

// ProviderInfo describes a provider kind for display purposes.
type ProviderInfo struct {
	Kind        ProviderKind `json:"kind"`
	DisplayName string       `json:"displayName"`
	CanUpload   bool         `json:"canUpload"`
	CanDownload bool         `json:"canDownload"`
}

// Credentials are short-lived storage credentials for one account.
// For S3 these are STS-style keys; for Azure a SAS token.
type Credentials struct {
	AccessKeyID  string    `json:"accessKeyId,omitempty"`
	SecretKey    string    `json:"secretKey,omitempty"`
	SessionToken string    `json:"sessionToken,omitempty"`
	SASToken     string    `json:"sasToken,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the credentials are past (or within window of) expiry.
func (c *Credentials) Expired(window time.Duration) bool {
	if c == nil {
		return true
	}
	if c.Expiry.IsZero() {
		return false // static credentials never expire
	}
	return time.Now().Add(window).After(c.Expiry)
}
