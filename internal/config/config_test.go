package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jodinathan/filedrive/internal/models"
)

// TestLoadMissingFileReturnsDefaults verifies a fresh install works without
// any config file on disk.
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DebounceWindow != 400*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 400ms", cfg.DebounceWindow)
	}
	if cfg.ParallelTransfers != 3 {
		t.Errorf("ParallelTransfers = %d, want 3", cfg.ParallelTransfers)
	}
	if len(cfg.Accounts) != 0 {
		t.Errorf("expected no accounts, got %d", len(cfg.Accounts))
	}
}

// TestSaveLoadRoundTrip verifies accounts and general settings survive a
// write/read cycle.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg := Default()
	cfg.DebounceWindow = 250 * time.Millisecond
	cfg.ParallelTransfers = 5
	cfg.ProxyMode = "system"
	cfg.Accounts["work"] = &models.Account{
		ID:          "work",
		Provider:    models.ProviderS3,
		DisplayName: "Work bucket",
		Container:   "acme-files",
		Region:      "us-east-1",
		TokenURL:    "https://sts.acme.example/creds",
	}
	cfg.Accounts["personal"] = &models.Account{
		ID:             "personal",
		Provider:       models.ProviderAzure,
		DisplayName:    "Personal",
		Container:      "photos",
		StorageAccount: "jodinathan",
	}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.DebounceWindow != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 250ms", loaded.DebounceWindow)
	}
	if loaded.ParallelTransfers != 5 {
		t.Errorf("ParallelTransfers = %d, want 5", loaded.ParallelTransfers)
	}

	work, ok := loaded.Accounts["work"]
	if !ok {
		t.Fatal("account 'work' not loaded")
	}
	if work.Provider != models.ProviderS3 || work.Region != "us-east-1" || work.Container != "acme-files" {
		t.Errorf("unexpected account: %+v", work)
	}
	if work.TokenURL != "https://sts.acme.example/creds" {
		t.Errorf("TokenURL = %q", work.TokenURL)
	}

	personal, ok := loaded.Accounts["personal"]
	if !ok {
		t.Fatal("account 'personal' not loaded")
	}
	if personal.Provider != models.ProviderAzure || personal.StorageAccount != "jodinathan" {
		t.Errorf("unexpected account: %+v", personal)
	}
}

// TestSaveRestrictsFileMode verifies the config file is not world-readable.
func TestSaveRestrictsFileMode(t *testing.T) {
	if os.PathSeparator == '\\' {
		t.Skip("file modes are not meaningful on Windows")
	}
	path := filepath.Join(t.TempDir(), "config")
	if err := Default().Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

// TestValidateRejectsBadValues exercises the validation sentinels.
func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "debounce too small",
			mutate:  func(c *Config) { c.DebounceWindow = 10 * time.Millisecond },
			wantErr: ErrInvalidDebounce,
		},
		{
			name:    "debounce too large",
			mutate:  func(c *Config) { c.DebounceWindow = time.Minute },
			wantErr: ErrInvalidDebounce,
		},
		{
			name:    "zero parallelism",
			mutate:  func(c *Config) { c.ParallelTransfers = 0 },
			wantErr: ErrInvalidParallelism,
		},
		{
			name:    "unknown proxy mode",
			mutate:  func(c *Config) { c.ProxyMode = "socks5" },
			wantErr: ErrInvalidProxyMode,
		},
		{
			name:    "ntlm without host",
			mutate:  func(c *Config) { c.ProxyMode = "ntlm" },
			wantErr: ErrMissingProxyHost,
		},
		{
			name: "s3 account without region",
			mutate: func(c *Config) {
				c.Accounts["x"] = &models.Account{ID: "x", Provider: models.ProviderS3, Container: "b"}
			},
			wantErr: ErrMissingRegion,
		},
		{
			name: "azure account without storage account",
			mutate: func(c *Config) {
				c.Accounts["x"] = &models.Account{ID: "x", Provider: models.ProviderAzure, Container: "b"}
			},
			wantErr: ErrMissingStorageAcct,
		},
		{
			name: "account without container",
			mutate: func(c *Config) {
				c.Accounts["x"] = &models.Account{ID: "x", Provider: models.ProviderS3, Region: "us-east-1"}
			},
			wantErr: ErrMissingContainer,
		},
		{
			name: "account with unknown provider",
			mutate: func(c *Config) {
				c.Accounts["x"] = &models.Account{ID: "x", Provider: "gopher", Container: "b"}
			},
			wantErr: ErrMissingProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccountIDsStableOrder verifies deterministic ordering for display.
func TestAccountIDsStableOrder(t *testing.T) {
	cfg := Default()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		cfg.Accounts[id] = &models.Account{ID: id, Provider: models.ProviderS3, Region: "r", Container: "c"}
	}
	ids := cfg.AccountIDs()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("AccountIDs() = %v, want %v", ids, want)
		}
	}
}
