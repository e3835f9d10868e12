package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gengocodes/gensupply-backend/auth"
	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/service"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "this-is-a-test-secret-with-32-bytes!"
	testTTL    = 10 * time.Minute
)

// =============================================================================
// Mock Services
// =============================================================================

type mockAuthService struct {
	registerFunc   func(ctx context.Context, req models.RegisterRequest) error
	loginFunc      func(ctx context.Context, req models.LoginRequest) (*service.Session, error)
	updateNameFunc func(ctx context.Context, claims *auth.Claims, name string) (*service.Session, error)
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest) (*service.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) UpdateName(ctx context.Context, claims *auth.Claims, name string) (*service.Session, error) {
	if m.updateNameFunc != nil {
		return m.updateNameFunc(ctx, claims, name)
	}
	return nil, errors.New("not implemented")
}

type mockSupplyService struct {
	listFunc   func(ctx context.Context, ownerID int64) ([]models.Supply, error)
	createFunc func(ctx context.Context, ownerID int64, req models.SupplyRequest) error
	updateFunc func(ctx context.Context, ownerID, supplyID int64, req models.SupplyRequest) error
	deleteFunc func(ctx context.Context, ownerID, supplyID int64) error
}

func (m *mockSupplyService) List(ctx context.Context, ownerID int64) ([]models.Supply, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ownerID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSupplyService) Create(ctx context.Context, ownerID int64, req models.SupplyRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, req)
	}
	return errors.New("not implemented")
}

func (m *mockSupplyService) Update(ctx context.Context, ownerID, supplyID int64, req models.SupplyRequest) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, ownerID, supplyID, req)
	}
	return errors.New("not implemented")
}

func (m *mockSupplyService) Delete(ctx context.Context, ownerID, supplyID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, supplyID)
	}
	return errors.New("not implemented")
}

// memoryDenylist is an in-process Denylist for handler tests.
type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: map[string]time.Duration{}}
}

func (d *memoryDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[tokenID] = ttl
	return nil
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}

// =============================================================================
// Helpers
// =============================================================================

func issueToken(t *testing.T, tokens auth.TokenService, id int64, name, email string) (string, *auth.Claims) {
	t.Helper()
	token, claims, err := tokens.Issue(auth.Identity{ID: id, Name: name, Email: email})
	require.NoError(t, err)
	return token, claims
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	return req
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookie {
			return c
		}
	}
	return nil
}
