package mock

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo     *mockUserRepo
	SettingsRepo *mockSettingsRepo
	Denylist     *mockDenylist
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:     &mockUserRepo{Users: map[string]*models.User{}},
		SettingsRepo: &mockSettingsRepo{Docs: map[string]json.RawMessage{}},
		Denylist:     &mockDenylist{Revoked: map[string]time.Time{}},
	}
}

type mockUserRepo struct {
	mu        sync.Mutex
	Users     map[string]*models.User
	CreateErr error
	GetErr    error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.Users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context, nameFilter string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.Users {
		if nameFilter == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(nameFilter)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Users, id)
	return nil
}

type mockSettingsRepo struct {
	mu     sync.Mutex
	Docs   map[string]json.RawMessage
	PutErr error
}

func (m *mockSettingsRepo) GetSettings(ctx context.Context, userID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Docs[userID], nil
}

func (m *mockSettingsRepo) PutSettings(ctx context.Context, userID string, doc json.RawMessage) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[userID] = doc
	return nil
}

type mockDenylist struct {
	mu      sync.Mutex
	Revoked map[string]time.Time
}

func (m *mockDenylist) Revoke(ctx context.Context, jti string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Revoked[jti] = expires
	return nil
}

func (m *mockDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.Revoked[jti]
	return ok && time.Now().Before(exp), nil
}
