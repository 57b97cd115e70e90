package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type profileStoreStub struct {
	profiles map[uuid.UUID]model.Profile
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{profiles: make(map[uuid.UUID]model.Profile)}
}

func (s *profileStoreStub) Get(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	return p, nil
}

func (s *profileStoreStub) CreditBalance(_ context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	switch currency {
	case enums.CurrencyCash:
		p.Cash += amount
	default:
		p.Xenocoins += amount
	}
	s.profiles[userID] = p
	return p, nil
}

func TestGetBalances(t *testing.T) {
	store := newProfileStoreStub()
	userID := uuid.New()
	store.profiles[userID] = model.Profile{ID: userID, Xenocoins: 150, Cash: 7}

	svc := NewService(store)

	balance, err := svc.GetBalances(context.Background(), userID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if balance.Xenocoins != 150 || balance.Cash != 7 {
		t.Fatalf("unexpected balance: %+v", balance)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewService(newProfileStoreStub())

	_, err := svc.GetProfile(context.Background(), uuid.New())
	if !errors.Is(err, repo.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestGetProfileRejectsNilID(t *testing.T) {
	svc := NewService(newProfileStoreStub())

	_, err := svc.GetProfile(context.Background(), uuid.Nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCredit(t *testing.T) {
	store := newProfileStoreStub()
	userID := uuid.New()
	store.profiles[userID] = model.Profile{ID: userID, Xenocoins: 10}

	svc := NewService(store)

	balance, err := svc.Credit(context.Background(), userID, enums.CurrencyXenocoins, 90)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance.Xenocoins != 100 {
		t.Fatalf("expected 100 xenocoins, got %d", balance.Xenocoins)
	}
}

func TestCreditRejectsBadInput(t *testing.T) {
	store := newProfileStoreStub()
	userID := uuid.New()
	store.profiles[userID] = model.Profile{ID: userID}

	svc := NewService(store)

	if _, err := svc.Credit(context.Background(), userID, enums.Currency("gold"), 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad currency, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), userID, enums.CurrencyCash, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}
}
