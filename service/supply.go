package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/store"
)

// SupplyService manages the supplies of a single owner. The owner id always
// comes from the verified session, never from the request body.
type SupplyService interface {
	List(ctx context.Context, ownerID int64) ([]models.Supply, error)
	Create(ctx context.Context, ownerID int64, req models.SupplyRequest) error
	Update(ctx context.Context, ownerID, supplyID int64, req models.SupplyRequest) error
	Delete(ctx context.Context, ownerID, supplyID int64) error
}

type supplyService struct {
	supplies store.SupplyStore
}

// NewSupplyService creates a SupplyService.
func NewSupplyService(supplies store.SupplyStore) SupplyService {
	return &supplyService{supplies: supplies}
}

func (s *supplyService) List(ctx context.Context, ownerID int64) ([]models.Supply, error) {
	supplies, err := s.supplies.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, newError(KindInternal, MsgListSuppliesFailed, err)
	}
	return supplies, nil
}

func (s *supplyService) Create(ctx context.Context, ownerID int64, req models.SupplyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return newError(KindInvalid, MsgMissingSupplyName, nil)
	}

	supply := &models.Supply{UserID: ownerID, Name: req.Name, Count: req.Count}
	if err := s.supplies.Create(ctx, supply); err != nil {
		return newError(KindInternal, MsgCreateSupplyFailed, err)
	}
	return nil
}

func (s *supplyService) Update(ctx context.Context, ownerID, supplyID int64, req models.SupplyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return newError(KindInvalid, MsgMissingSupplyName, nil)
	}

	supply := &models.Supply{ID: supplyID, UserID: ownerID, Name: req.Name, Count: req.Count}
	if err := s.supplies.Update(ctx, supply); err != nil {
		return ownedMutationError(err, MsgUpdateSupplyFailed)
	}
	return nil
}

func (s *supplyService) Delete(ctx context.Context, ownerID, supplyID int64) error {
	if err := s.supplies.Delete(ctx, supplyID, ownerID); err != nil {
		return ownedMutationError(err, MsgDeleteSupplyFailed)
	}
	return nil
}

// ownedMutationError reports a zero-row owner-scoped mutation as NotFound.
// "Not yours" and "does not exist" are the same outcome.
func ownedMutationError(err error, failMessage string) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, MsgSupplyNotFound, ErrSupplyNotFound)
	}
	return newError(KindInternal, failMessage, err)
}
