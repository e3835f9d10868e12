package service

import (
	"context"
	"errors"

	"github.com/gengocodes/gensupply-backend/auth"
	"github.com/gengocodes/gensupply-backend/models"
)

// =============================================================================
// Mock Stores
// =============================================================================

type mockUserStore struct {
	findByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	emailExistsFunc       func(ctx context.Context, email string) (bool, error)
	createFunc            func(ctx context.Context, user *models.User) error
	updateNameByEmailFunc func(ctx context.Context, email, name string) error
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFunc != nil {
		return m.emailExistsFunc(ctx, email)
	}
	return false, errors.New("not implemented")
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserStore) UpdateNameByEmail(ctx context.Context, email, name string) error {
	if m.updateNameByEmailFunc != nil {
		return m.updateNameByEmailFunc(ctx, email, name)
	}
	return errors.New("not implemented")
}

type mockSupplyStore struct {
	listByOwnerFunc func(ctx context.Context, userID int64) ([]models.Supply, error)
	createFunc      func(ctx context.Context, supply *models.Supply) error
	updateFunc      func(ctx context.Context, supply *models.Supply) error
	deleteFunc      func(ctx context.Context, id, userID int64) error
}

func (m *mockSupplyStore) ListByOwner(ctx context.Context, userID int64) ([]models.Supply, error) {
	if m.listByOwnerFunc != nil {
		return m.listByOwnerFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSupplyStore) Create(ctx context.Context, supply *models.Supply) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, supply)
	}
	return errors.New("not implemented")
}

func (m *mockSupplyStore) Update(ctx context.Context, supply *models.Supply) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, supply)
	}
	return errors.New("not implemented")
}

func (m *mockSupplyStore) Delete(ctx context.Context, id, userID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return errors.New("not implemented")
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func (failingHasher) Verify(string, string) (bool, error) {
	return false, errors.New("corrupt hash")
}

// countingHasher delegates to a real hasher and counts Verify calls.
type countingHasher struct {
	auth.PasswordHasher
	verifies int
}

func (h *countingHasher) Verify(plaintext, hash string) (bool, error) {
	h.verifies++
	return h.PasswordHasher.Verify(plaintext, hash)
}
