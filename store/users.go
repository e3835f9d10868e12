package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gengocodes/gensupply-backend/models"
	"github.com/jmoiron/sqlx"
)

// UserStore defines the credential store operations.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateNameByEmail(ctx context.Context, email, name string) error
}

type userStore struct {
	db *sqlx.DB
	timeouts
}

// NewUserStore creates a UserStore backed by the given pool.
func NewUserStore(db *sqlx.DB, queryTimeout time.Duration) UserStore {
	return &userStore{db: db, timeouts: timeouts{query: queryTimeout}}
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email %s: %w", email, err)
	}
	return &user, nil
}

func (s *userStore) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM users WHERE email = ?", email); err != nil {
		return false, fmt.Errorf("failed to check email %s: %w", email, err)
	}
	return count > 0, nil
}

// Create inserts the user and sets its ID. A unique email violation is
// reported as ErrDuplicate.
func (s *userStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		user.Name, user.Email, user.Password, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *userStore) UpdateNameByEmail(ctx context.Context, email, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, updated_at = ? WHERE email = ?", name, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("failed to update name for %s: %w", email, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
