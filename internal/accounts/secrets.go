// Package accounts manages the cloud accounts the picker can browse:
// the registry, secret storage, and refresh of short-lived storage
// credentials.
package accounts

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const keyringService = "filedrive"

// SecretStore persists per-account refresh secrets (API keys or OAuth
// refresh tokens).
type SecretStore interface {
	Get(accountID string) (string, error)
	Set(accountID, secret string) error
	Delete(accountID string) error
}

// ErrSecretNotFound is returned when no secret is stored for an account.
var ErrSecretNotFound = errors.New("no secret stored for account")

// KeyringStore stores secrets in the OS keyring.
type KeyringStore struct{}

// NewKeyringStore returns a store backed by the platform keyring. Probe
// with Available before relying on it; headless hosts often lack a keyring
// daemon.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

// Available reports whether the platform keyring responds.
func (s *KeyringStore) Available() bool {
	// A read of a key that cannot exist distinguishes "not found" (keyring
	// works) from transport errors (no daemon).
	_, err := keyring.Get(keyringService, "__probe__")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func (s *KeyringStore) Get(accountID string) (string, error) {
	secret, err := keyring.Get(keyringService, accountID)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	return secret, err
}

func (s *KeyringStore) Set(accountID, secret string) error {
	return keyring.Set(keyringService, accountID, secret)
}

func (s *KeyringStore) Delete(accountID string) error {
	err := keyring.Delete(keyringService, accountID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// MemoryStore keeps secrets in memory. Used in tests and as the fallback
// when the platform keyring is unavailable.
type MemoryStore struct {
	secrets map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (s *MemoryStore) Get(accountID string) (string, error) {
	secret, ok := s.secrets[accountID]
	if !ok {
		return "", ErrSecretNotFound
	}
	return secret, nil
}

func (s *MemoryStore) Set(accountID, secret string) error {
	s.secrets[accountID] = secret
	return nil
}

func (s *MemoryStore) Delete(accountID string) error {
	delete(s.secrets, accountID)
	return nil
}
