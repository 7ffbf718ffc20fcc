// Package config provides configuration management for FileDrive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/models"
)

// Config is the picker configuration. Accounts are explicit configuration
// passed into whatever needs them; there is no process-wide provider
// registry.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\filedrive\config
//   - Unix: ~/.config/filedrive/config
//
// INI format:
//
//	[general]
//	debounce_ms = 400
//	parallel_transfers = 3
//	proxy_mode = system
//	proxy_host =
//	proxy_port =
//	proxy_user =
//
//	[account:work-s3]
//	provider = s3
//	display_name = Work bucket
//	container = acme-files
//	region = us-east-1
//	token_url = https://sts.acme.example/creds
type Config struct {
	// DebounceWindow for the search box.
	DebounceWindow time.Duration

	// ParallelTransfers bounds concurrent upload/download workers.
	ParallelTransfers int

	// Proxy settings shared by all outbound HTTP.
	ProxyMode string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost string
	ProxyPort int
	ProxyUser string
	ProxyPass string

	// Accounts keyed by ID, plus a stable ordering for display.
	Accounts map[string]*models.Account
}

// Validation errors
var (
	ErrInvalidDebounce    = errors.New("debounce_ms must be between 50 and 5000")
	ErrInvalidParallelism = errors.New("parallel_transfers must be between 1 and 16")
	ErrInvalidProxyMode   = errors.New("proxy_mode must be one of: no-proxy, system, basic, ntlm")
	ErrMissingProxyHost   = errors.New("proxy_host is required for basic and ntlm proxy modes")
	ErrMissingProvider    = errors.New("account provider is required (s3 or azure)")
	ErrMissingContainer   = errors.New("account container is required")
	ErrMissingRegion      = errors.New("region is required for s3 accounts")
	ErrMissingStorageAcct = errors.New("storage_account is required for azure accounts")
)

const accountSectionPrefix = "account:"

// DefaultPath returns the default path for the config file.
// - Windows: %USERPROFILE%\.config\filedrive\config
// - Unix: ~/.config/filedrive/config
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "filedrive")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "filedrive")
	}

	return filepath.Join(configDir, "config"), nil
}

// Default returns a config with sane defaults and no accounts.
func Default() *Config {
	return &Config{
		DebounceWindow:    constants.DefaultDebounceWindow,
		ParallelTransfers: constants.DefaultParallelTransfers,
		ProxyMode:         "no-proxy",
		Accounts:          make(map[string]*models.Account),
	}
}

// Load reads configuration from the given path. A missing file yields the
// defaults, not an error, so a fresh install starts cleanly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	general := f.Section("general")
	if general.HasKey("debounce_ms") {
		ms := general.Key("debounce_ms").MustInt(400)
		cfg.DebounceWindow = time.Duration(ms) * time.Millisecond
	}
	cfg.ParallelTransfers = general.Key("parallel_transfers").MustInt(constants.DefaultParallelTransfers)
	cfg.ProxyMode = general.Key("proxy_mode").MustString("no-proxy")
	cfg.ProxyHost = general.Key("proxy_host").String()
	cfg.ProxyPort = general.Key("proxy_port").MustInt(0)
	cfg.ProxyUser = general.Key("proxy_user").String()
	cfg.ProxyPass = general.Key("proxy_pass").String()

	for _, section := range f.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, accountSectionPrefix) {
			continue
		}
		id := strings.TrimPrefix(name, accountSectionPrefix)
		acct := &models.Account{
			ID:             id,
			Provider:       models.ProviderKind(section.Key("provider").String()),
			DisplayName:    section.Key("display_name").MustString(id),
			Email:          section.Key("email").String(),
			RootPath:       section.Key("root_path").String(),
			Region:         section.Key("region").String(),
			Container:      section.Key("container").String(),
			StorageAccount: section.Key("storage_account").String(),
			Endpoint:       section.Key("endpoint").String(),
			TokenURL:       section.Key("token_url").String(),
			Status:         models.AccountActive,
		}
		cfg.Accounts[id] = acct
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the given path, creating the directory
// if needed. File mode 0600: the file may hold proxy credentials.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := ini.Empty()

	general, err := f.NewSection("general")
	if err != nil {
		return err
	}
	general.Key("debounce_ms").SetValue(fmt.Sprintf("%d", c.DebounceWindow.Milliseconds()))
	general.Key("parallel_transfers").SetValue(fmt.Sprintf("%d", c.ParallelTransfers))
	general.Key("proxy_mode").SetValue(c.ProxyMode)
	if c.ProxyHost != "" {
		general.Key("proxy_host").SetValue(c.ProxyHost)
		general.Key("proxy_port").SetValue(fmt.Sprintf("%d", c.ProxyPort))
	}
	if c.ProxyUser != "" {
		general.Key("proxy_user").SetValue(c.ProxyUser)
	}
	if c.ProxyPass != "" {
		general.Key("proxy_pass").SetValue(c.ProxyPass)
	}

	for _, id := range c.AccountIDs() {
		acct := c.Accounts[id]
		section, err := f.NewSection(accountSectionPrefix + id)
		if err != nil {
			return err
		}
		section.Key("provider").SetValue(string(acct.Provider))
		section.Key("display_name").SetValue(acct.DisplayName)
		if acct.Email != "" {
			section.Key("email").SetValue(acct.Email)
		}
		if acct.RootPath != "" {
			section.Key("root_path").SetValue(acct.RootPath)
		}
		if acct.Region != "" {
			section.Key("region").SetValue(acct.Region)
		}
		section.Key("container").SetValue(acct.Container)
		if acct.StorageAccount != "" {
			section.Key("storage_account").SetValue(acct.StorageAccount)
		}
		if acct.Endpoint != "" {
			section.Key("endpoint").SetValue(acct.Endpoint)
		}
		if acct.TokenURL != "" {
			section.Key("token_url").SetValue(acct.TokenURL)
		}
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.DebounceWindow < constants.MinDebounceWindow || c.DebounceWindow > constants.MaxDebounceWindow {
		return ErrInvalidDebounce
	}
	if c.ParallelTransfers < 1 || c.ParallelTransfers > constants.MaxParallelTransfers {
		return ErrInvalidParallelism
	}

	switch c.ProxyMode {
	case "no-proxy", "system", "":
	case "basic", "ntlm":
		if c.ProxyHost == "" {
			return ErrMissingProxyHost
		}
	default:
		return ErrInvalidProxyMode
	}

	for id, acct := range c.Accounts {
		if err := ValidateAccount(acct); err != nil {
			return fmt.Errorf("account %s: %w", id, err)
		}
	}
	return nil
}

// ValidateAccount checks a single account definition.
func ValidateAccount(acct *models.Account) error {
	switch acct.Provider {
	case models.ProviderS3:
		if acct.Region == "" && acct.Endpoint == "" {
			return ErrMissingRegion
		}
	case models.ProviderAzure:
		if acct.StorageAccount == "" {
			return ErrMissingStorageAcct
		}
	default:
		return ErrMissingProvider
	}
	if acct.Container == "" {
		return ErrMissingContainer
	}
	return nil
}

// AccountIDs returns account IDs in stable sorted order for display.
func (c *Config) AccountIDs() []string {
	ids := make([]string, 0, len(c.Accounts))
	for id := range c.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
