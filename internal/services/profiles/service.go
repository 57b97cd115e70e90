package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	CreditBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error)
}

type Service struct {
	store ProfileStore
}

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *Service) GetBalances(ctx context.Context, userID uuid.UUID) (model.Balance, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return model.Balance{}, err
	}
	return profile.Balance(), nil
}

// Credit tops up a user's balance (admin surface).
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Balance, error) {
	if userID == uuid.Nil {
		return model.Balance{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if !currency.Valid() {
		return model.Balance{}, fmt.Errorf("invalid currency %q: %w", currency, ErrValidation)
	}
	if amount <= 0 {
		return model.Balance{}, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Balance{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.CreditBalance(ctx, userID, currency, amount)
	if err != nil {
		return model.Balance{}, fmt.Errorf("credit balance: %w", err)
	}
	return profile.Balance(), nil
}
