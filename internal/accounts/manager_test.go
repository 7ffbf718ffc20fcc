package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jodinathan/filedrive/internal/config"
	"github.com/jodinathan/filedrive/internal/events"
	"github.com/jodinathan/filedrive/internal/models"
)

func s3Account(id string) *models.Account {
	return &models.Account{
		ID:        id,
		Provider:  models.ProviderS3,
		Container: "bucket",
		Region:    "us-east-1",
	}
}

// TestAddListRemove verifies basic registry operations and events.
func TestAddListRemove(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	added := bus.Subscribe(events.EventAccountAdded)
	removed := bus.Subscribe(events.EventAccountRemoved)

	m := NewManager(config.Default(), NewMemoryStore(), nil, bus)

	if err := m.Add(s3Account("work"), "secret-1"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Add(s3Account("work"), "x"); err == nil {
		t.Error("duplicate Add() should fail")
	}

	accts := m.List()
	if len(accts) != 1 || accts[0].ID != "work" {
		t.Fatalf("List() = %+v", accts)
	}
	if accts[0].Status != models.AccountActive {
		t.Errorf("new account status = %s, want active", accts[0].Status)
	}

	select {
	case <-added:
	case <-time.After(time.Second):
		t.Fatal("no account_added event")
	}

	if err := m.Remove("work"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := m.Get("work"); err == nil {
		t.Error("Get() after Remove should fail")
	}

	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("no account_removed event")
	}
}

// TestAddValidatesAccount verifies invalid definitions are rejected.
func TestAddValidatesAccount(t *testing.T) {
	m := NewManager(config.Default(), NewMemoryStore(), nil, nil)
	err := m.Add(&models.Account{ID: "x", Provider: models.ProviderS3}, "")
	if !errors.Is(err, config.ErrMissingRegion) {
		t.Errorf("Add() = %v, want ErrMissingRegion", err)
	}
}

// TestCredentialsRefreshAndCache verifies the token endpoint is hit once
// while credentials are fresh.
func TestCredentialsRefreshAndCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer refresh-secret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessKeyId": "AKIA",
			"secretKey":   "s3cr3t",
			"expiresIn":   3600,
		})
	}))
	defer srv.Close()

	secrets := NewMemoryStore()
	m := NewManager(config.Default(), secrets, srv.Client(), nil)

	acct := s3Account("work")
	acct.TokenURL = srv.URL
	if err := m.Add(acct, "refresh-secret"); err != nil {
		t.Fatal(err)
	}

	creds, err := m.Credentials(context.Background(), "work")
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if creds.AccessKeyID != "AKIA" || creds.SecretKey != "s3cr3t" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if creds.Expiry.Before(time.Now().Add(30 * time.Minute)) {
		t.Errorf("expiry too soon: %v", creds.Expiry)
	}

	// Second call should be served from cache.
	if _, err := m.Credentials(context.Background(), "work"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("token endpoint hit %d times, want 1", calls.Load())
	}
}

// TestCredentialsFailureMarksExpired verifies status flip and event on a
// failing token endpoint.
func TestCredentialsFailureMarksExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	bus := events.NewEventBus(10)
	defer bus.Close()
	expired := bus.Subscribe(events.EventAccountExpired)

	m := NewManager(config.Default(), NewMemoryStore(), srv.Client(), bus)
	acct := s3Account("work")
	acct.TokenURL = srv.URL
	if err := m.Add(acct, "bad-secret"); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Credentials(context.Background(), "work"); err == nil {
		t.Fatal("expected error from 403 token endpoint")
	}

	got, _ := m.Get("work")
	if got.Status != models.AccountExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("no account_expired event")
	}
}

// TestCredentialsWithoutSecret verifies the secret-store error surfaces.
func TestCredentialsWithoutSecret(t *testing.T) {
	m := NewManager(config.Default(), NewMemoryStore(), nil, nil)
	acct := s3Account("work")
	acct.TokenURL = "https://example.invalid/token"
	if err := m.Add(acct, ""); err != nil {
		t.Fatal(err)
	}

	_, err := m.Credentials(context.Background(), "work")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Credentials() = %v, want ErrSecretNotFound", err)
	}
}
