package accounts

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jodinathan/filedrive/internal/config"
	"github.com/jodinathan/filedrive/internal/events"
	"github.com/jodinathan/filedrive/internal/models"
)

// Manager is the account registry. It is explicit configuration handed to
// whoever needs it; nothing in the picker reaches for a global.
type Manager struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	sources  map[string]*TokenSource

	secrets    SecretStore
	httpClient *http.Client
	bus        *events.EventBus
}

// NewManager builds a registry from the configured accounts. bus may be nil.
func NewManager(cfg *config.Config, secrets SecretStore, httpClient *http.Client, bus *events.EventBus) *Manager {
	m := &Manager{
		accounts:   make(map[string]*models.Account),
		sources:    make(map[string]*TokenSource),
		secrets:    secrets,
		httpClient: httpClient,
		bus:        bus,
	}
	for id, acct := range cfg.Accounts {
		copied := *acct
		m.accounts[id] = &copied
	}
	return m
}

// Get returns the account with the given ID.
func (m *Manager) Get(id string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("unknown account %q", id)
	}
	return acct, nil
}

// List returns all accounts sorted by ID.
func (m *Manager) List() []*models.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		out = append(out, acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Add registers an account and stores its refresh secret.
func (m *Manager) Add(acct *models.Account, secret string) error {
	if err := config.ValidateAccount(acct); err != nil {
		return err
	}

	m.mu.Lock()
	if _, exists := m.accounts[acct.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("account %q already exists", acct.ID)
	}
	copied := *acct
	copied.Status = models.AccountActive
	m.accounts[acct.ID] = &copied
	m.mu.Unlock()

	if secret != "" {
		if err := m.secrets.Set(acct.ID, secret); err != nil {
			return fmt.Errorf("failed to store secret for account %s: %w", acct.ID, err)
		}
	}

	if m.bus != nil {
		m.bus.Publish(&events.AccountEvent{
			BaseEvent:   events.BaseEvent{EventType: events.EventAccountAdded, Time: time.Now()},
			AccountID:   acct.ID,
			Provider:    string(acct.Provider),
			DisplayName: acct.DisplayName,
		})
	}
	return nil
}

// Remove deletes an account and its stored secret.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	acct, ok := m.accounts[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown account %q", id)
	}
	delete(m.accounts, id)
	delete(m.sources, id)
	m.mu.Unlock()

	if err := m.secrets.Delete(id); err != nil {
		return fmt.Errorf("failed to delete secret for account %s: %w", id, err)
	}

	if m.bus != nil {
		m.bus.Publish(&events.AccountEvent{
			BaseEvent:   events.BaseEvent{EventType: events.EventAccountRemoved, Time: time.Now()},
			AccountID:   id,
			Provider:    string(acct.Provider),
			DisplayName: acct.DisplayName,
		})
	}
	return nil
}

// TokenSource returns the (cached) token source for an account.
func (m *Manager) TokenSource(id string) (*TokenSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("unknown account %q", id)
	}
	ts, ok := m.sources[id]
	if !ok {
		ts = NewTokenSource(acct, m.secrets, m.httpClient)
		m.sources[id] = ts
	}
	return ts, nil
}

// Credentials resolves fresh credentials for an account, flipping its status
// to expired (and publishing an event) when the refresh fails.
func (m *Manager) Credentials(ctx context.Context, id string) (*models.Credentials, error) {
	ts, err := m.TokenSource(id)
	if err != nil {
		return nil, err
	}

	creds, err := ts.Credentials(ctx)
	if err != nil {
		m.markExpired(id)
		return nil, err
	}

	m.mu.Lock()
	if acct, ok := m.accounts[id]; ok {
		acct.Status = models.AccountActive
	}
	m.mu.Unlock()

	return creds, nil
}

func (m *Manager) markExpired(id string) {
	m.mu.Lock()
	acct, ok := m.accounts[id]
	if ok && acct.Status != models.AccountExpired {
		acct.Status = models.AccountExpired
	} else {
		ok = false
	}
	m.mu.Unlock()

	if ok && m.bus != nil {
		m.bus.Publish(&events.AccountEvent{
			BaseEvent:   events.BaseEvent{EventType: events.EventAccountExpired, Time: time.Now()},
			AccountID:   id,
			Provider:    string(acct.Provider),
			DisplayName: acct.DisplayName,
		})
	}
}
