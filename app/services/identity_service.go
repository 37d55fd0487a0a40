// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/saathi-care/listener-platform/config"
)

// Identity service error constants
var (
	ErrIdentityNotFound = errors.New("identity account not found")
	ErrIdentityGateway  = errors.New("identity gateway error")
)

// IdentityAccount is an account as known by the external identity provider.
type IdentityAccount struct {
	UID         string `json:"uid"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
}

// IdentityService wraps the external identity provider that owns user
// accounts. Account creation and deletion happen over its HTTP API and are
// not transactional with the local database, so callers are responsible for
// compensating on failure.
type IdentityService interface {
	// LookupByPhone returns the account for a phone number, or
	// ErrIdentityNotFound when no account exists.
	LookupByPhone(ctx context.Context, phone string) (*IdentityAccount, error)
	// CreateAccount provisions a new account for the phone number.
	CreateAccount(ctx context.Context, phone, displayName string) (*IdentityAccount, error)
	// DeleteAccount removes an account. Used to compensate a failed
	// provisioning transaction.
	DeleteAccount(ctx context.Context, uid string) error
	// SetAdminClaim flags the account as a platform admin.
	SetAdminClaim(ctx context.Context, uid string, isAdmin bool) error
}

// IdentityServiceImpl implements IdentityService over the provider's HTTP API
type IdentityServiceImpl struct {
	config *config.IdentityConfig
	client *http.Client
}

// NewIdentityService creates a new identity service instance
func NewIdentityService(cfg *config.IdentityConfig) IdentityService {
	return &IdentityServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type identityCreateRequest struct {
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	TenantID    string `json:"tenant_id,omitempty"`
}

type identityClaimRequest struct {
	Admin bool `json:"admin"`
}

// LookupByPhone returns the account registered for the phone number
func (s *IdentityServiceImpl) LookupByPhone(ctx context.Context, phone string) (*IdentityAccount, error) {
	url := fmt.Sprintf("%s/v1/accounts:lookup?phone=%s", s.config.BaseURL, phone)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIdentityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: lookup returned %d", ErrIdentityGateway, resp.StatusCode)
	}

	var account IdentityAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return &account, nil
}

// CreateAccount provisions a new account for the phone number
func (s *IdentityServiceImpl) CreateAccount(ctx context.Context, phone, displayName string) (*IdentityAccount, error) {
	body, err := json.Marshal(identityCreateRequest{
		Phone:       phone,
		DisplayName: displayName,
		TenantID:    s.config.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/accounts", s.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create returned %d", ErrIdentityGateway, resp.StatusCode)
	}

	var account IdentityAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}
	return &account, nil
}

// DeleteAccount removes an account from the identity provider
func (s *IdentityServiceImpl) DeleteAccount(ctx context.Context, uid string) error {
	url := fmt.Sprintf("%s/v1/accounts/%s", s.config.BaseURL, uid)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIdentityGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: delete returned %d", ErrIdentityGateway, resp.StatusCode)
	}
	return nil
}

// SetAdminClaim flags the account as a platform admin
func (s *IdentityServiceImpl) SetAdminClaim(ctx context.Context, uid string, isAdmin bool) error {
	body, err := json.Marshal(identityClaimRequest{Admin: isAdmin})
	if err != nil {
		return fmt.Errorf("failed to marshal claim request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/accounts/%s/claims", s.config.BaseURL, uid)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIdentityGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: set claim returned %d", ErrIdentityGateway, resp.StatusCode)
	}
	return nil
}

// MockIdentityService implements IdentityService in memory for local runs and
// tests. Every mutating call is recorded so tests can assert on compensation.
type MockIdentityService struct {
	mu       sync.Mutex
	byPhone  map[string]*IdentityAccount
	Created  []string
	Deleted  []string
	Claims   map[string]bool
	FailNext error // returned by the next CreateAccount call, then cleared
}

// NewMockIdentityService creates a new mock identity service
func NewMockIdentityService() *MockIdentityService {
	return &MockIdentityService{
		byPhone: make(map[string]*IdentityAccount),
		Claims:  make(map[string]bool),
	}
}

// Register seeds an existing account, as if it was created by the user app
func (m *MockIdentityService) Register(account *IdentityAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPhone[account.Phone] = account
}

func (m *MockIdentityService) LookupByPhone(ctx context.Context, phone string) (*IdentityAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byPhone[phone]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return account, nil
}

func (m *MockIdentityService) CreateAccount(ctx context.Context, phone, displayName string) (*IdentityAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return nil, err
	}
	account := &IdentityAccount{
		UID:         "acc_" + uuid.New().String()[:12],
		Phone:       phone,
		DisplayName: displayName,
	}
	m.byPhone[phone] = account
	m.Created = append(m.Created, account.UID)
	return account, nil
}

func (m *MockIdentityService) DeleteAccount(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for phone, account := range m.byPhone {
		if account.UID == uid {
			delete(m.byPhone, phone)
			break
		}
	}
	m.Deleted = append(m.Deleted, uid)
	return nil
}

func (m *MockIdentityService) SetAdminClaim(ctx context.Context, uid string, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Claims[uid] = isAdmin
	return nil
}
