package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gengocodes/gensupply-backend/models"
	"github.com/jmoiron/sqlx"
)

// SupplyStore defines owner-scoped supply operations. Every statement filters
// on user_id, so a caller can never read or change another user's rows.
type SupplyStore interface {
	ListByOwner(ctx context.Context, userID int64) ([]models.Supply, error)
	Create(ctx context.Context, supply *models.Supply) error
	Update(ctx context.Context, supply *models.Supply) error
	Delete(ctx context.Context, id, userID int64) error
}

type supplyStore struct {
	db *sqlx.DB
	timeouts
}

// NewSupplyStore creates a SupplyStore backed by the given pool.
func NewSupplyStore(db *sqlx.DB, queryTimeout time.Duration) SupplyStore {
	return &supplyStore{db: db, timeouts: timeouts{query: queryTimeout}}
}

func (s *supplyStore) ListByOwner(ctx context.Context, userID int64) ([]models.Supply, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	supplies := []models.Supply{}
	err := s.db.SelectContext(ctx, &supplies,
		"SELECT id, user_id, name, count FROM supplies WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplies for user %d: %w", userID, err)
	}
	return supplies, nil
}

func (s *supplyStore) Create(ctx context.Context, supply *models.Supply) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO supplies (user_id, name, count) VALUES (?, ?, ?)",
		supply.UserID, supply.Name, supply.Count)
	if err != nil {
		return fmt.Errorf("failed to create supply for user %d: %w", supply.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new supply id: %w", err)
	}
	supply.ID = id
	return nil
}

// Update changes name and count of the supply only when it belongs to
// supply.UserID. Zero matched rows yields ErrNotFound.
func (s *supplyStore) Update(ctx context.Context, supply *models.Supply) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"UPDATE supplies SET name = ?, count = ? WHERE id = ? AND user_id = ?",
		supply.Name, supply.Count, supply.ID, supply.UserID)
	if err != nil {
		return fmt.Errorf("failed to update supply %d: %w", supply.ID, err)
	}
	return expectAffected(result.RowsAffected())
}

func (s *supplyStore) Delete(ctx context.Context, id, userID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, "DELETE FROM supplies WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete supply %d: %w", id, err)
	}
	return expectAffected(result.RowsAffected())
}

func expectAffected(rows int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
