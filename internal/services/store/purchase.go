package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/pkg/validate"
	"github.com/xenopets/backend/internal/repo"
)

// PurchaseResult is the business outcome of a purchase attempt. Rule-level
// failures (not enough funds, out of stock) come back as Success=false with a
// player-facing Message; infrastructure failures come back as errors.
type PurchaseResult struct {
	Success    bool
	Message    string
	NewBalance *model.Balance
}

const msgPurchaseBusy = "Another purchase is already in progress"

func failure(message string) PurchaseResult {
	return PurchaseResult{Success: false, Message: message}
}

// PurchaseItem buys quantity units of a listing for the given user:
// conditional balance debit, inventory grant, then best-effort stock
// decrement and audit append. The debit and the grant roll each other back
// on failure; the best-effort tail never fails the purchase.
func (s *Service) PurchaseItem(ctx context.Context, userID, shopItemID uuid.UUID, quantity int64) (PurchaseResult, error) {
	if userID == uuid.Nil || shopItemID == uuid.Nil {
		return PurchaseResult{}, ErrValidation
	}
	if !validate.PositiveQuantity(quantity) {
		return failure("Quantity must be at least 1"), nil
	}

	listing, err := s.listings.GetAvailableItem(ctx, shopItemID)
	if err != nil {
		if errors.Is(err, repo.ErrListingNotFound) {
			return failure("Item not found or unavailable"), nil
		}
		return PurchaseResult{}, fmt.Errorf("get listing: %w", err)
	}
	// price*quantity must not wrap; a wrapped total would pass the funds
	// check and debit a negative amount.
	if listing.Price > 0 && quantity > math.MaxInt64/listing.Price {
		return failure("Quantity too large"), nil
	}
	totalCost := listing.Price * quantity

	if s.locker != nil {
		token := uuid.NewString()
		key := userID.String()

		ok, err := s.locker.Acquire(ctx, key, token, s.cfg.LockTTL)
		if err != nil {
			return PurchaseResult{}, fmt.Errorf("acquire purchase lock: %w", err)
		}
		if !ok {
			return failure(msgPurchaseBusy), nil
		}
		defer func() {
			if err := s.locker.Release(ctx, key, token); err != nil {
				s.logger.Warn("release purchase lock", zap.Error(err))
			}
		}()
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("get profile: %w", err)
	}

	balance := profile.BalanceFor(listing.Currency)
	if balance < totalCost {
		return failure(insufficientFundsMessage(listing, totalCost, balance)), nil
	}
	if !listing.InStock(quantity) {
		return failure("Insufficient stock"), nil
	}

	record := model.PurchaseRecord{
		ID:         uuid.New(),
		UserID:     userID,
		ShopItemID: listing.ID,
		ItemID:     listing.ItemID,
		Quantity:   quantity,
		TotalCost:  totalCost,
		Currency:   listing.Currency,
		CreatedAt:  s.now().UTC(),
	}

	steps := []sagaStep{
		{
			name: "debit balance",
			run: func(ctx context.Context) error {
				_, err := s.profiles.DebitBalance(ctx, userID, listing.Currency, totalCost)
				return err
			},
			compensate: func(ctx context.Context) error {
				if _, err := s.profiles.CreditBalance(ctx, userID, listing.Currency, totalCost); err != nil {
					return fmt.Errorf("credit back %d %s to user %s: %w", totalCost, listing.Currency, userID, err)
				}
				return nil
			},
		},
		{
			name: "grant inventory",
			run: func(ctx context.Context) error {
				return s.inventory.Add(ctx, userID, listing.ItemID, quantity)
			},
			compensate: func(ctx context.Context) error {
				return s.inventory.Remove(ctx, userID, listing.ItemID, quantity)
			},
		},
		{
			name:       "decrement stock",
			bestEffort: true,
			run: func(ctx context.Context) error {
				return s.listings.DecrementStock(ctx, shopItemID, quantity)
			},
		},
	}
	if s.audit != nil {
		steps = append(steps, sagaStep{
			name:       "record purchase",
			bestEffort: true,
			run: func(ctx context.Context) error {
				return s.audit.Append(ctx, record)
			},
		})
	}

	if err := s.runSaga(ctx, steps); err != nil {
		// Another writer may have drained the balance between our read
		// and the debit; that is a business failure, not a server error.
		if errors.Is(err, repo.ErrInsufficientBalance) {
			return failure(insufficientFundsMessage(listing, totalCost, balance)), nil
		}
		return PurchaseResult{}, fmt.Errorf("purchase %s: %w", shopItemID, err)
	}

	s.invalidateCatalog(ctx, listing.ShopID)

	result := PurchaseResult{Success: true, Message: purchaseMessage(listing, quantity)}
	if updated, err := s.profiles.Get(ctx, userID); err != nil {
		s.logger.Warn("refresh balance after purchase", zap.Error(err))
	} else {
		b := updated.Balance()
		result.NewBalance = &b
	}

	return result, nil
}

// CanAffordItem answers the pre-purchase affordability probe. It never
// errors: anything that would stop a purchase reads as "cannot afford".
func (s *Service) CanAffordItem(ctx context.Context, userID, shopItemID uuid.UUID, quantity int64) bool {
	if userID == uuid.Nil || shopItemID == uuid.Nil || !validate.PositiveQuantity(quantity) {
		return false
	}

	listing, err := s.listings.GetAvailableItem(ctx, shopItemID)
	if err != nil {
		return false
	}
	if listing.Price > 0 && quantity > math.MaxInt64/listing.Price {
		return false
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return false
	}

	return profile.BalanceFor(listing.Currency) >= listing.Price*quantity
}

func insufficientFundsMessage(listing model.ShopItem, need, have int64) string {
	return fmt.Sprintf("Insufficient %s: need %d, have %d", listing.Currency, need, have)
}

func purchaseMessage(listing model.ShopItem, quantity int64) string {
	name := "item"
	if listing.Item != nil && listing.Item.Name != "" {
		name = listing.Item.Name
	}
	if quantity == 1 {
		return fmt.Sprintf("Purchased %s", name)
	}
	return fmt.Sprintf("Purchased %d x %s", quantity, name)
}
