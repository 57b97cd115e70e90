package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type InventoryStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.InventoryEntry, error)
}

type Service struct {
	store InventoryStore
}

func NewService(store InventoryStore) *Service {
	return &Service{store: store}
}

// ListByUser returns the user's inventory with item details attached. An
// empty inventory is a valid answer, never an error.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.InventoryEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return nil, fmt.Errorf("inventory store is nil")
	}

	entries, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return entries, nil
}
