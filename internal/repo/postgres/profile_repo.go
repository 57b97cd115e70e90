// Package postgres implements the record-store backends directly against a
// self-hosted database with pgx. Every method stays one independently atomic
// statement; the purchase workflow never gets a cross-table transaction,
// matching the contract of the managed record store it mirrors.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var profile model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT id, username, xenocoins, cash, created_at, updated_at
FROM profiles
WHERE id = $1
`, userID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Xenocoins,
		&profile.Cash,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, repo.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// DebitBalance subtracts amount in a single conditional UPDATE; the write is
// rejected when the wallet no longer covers the cost.
func (r *ProfileRepo) DebitBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	if err := r.checkAdjustArgs(userID, currency, amount); err != nil {
		return model.Profile{}, err
	}

	column := balanceColumn(currency)
	query := fmt.Sprintf(`
UPDATE profiles
SET %[1]s = %[1]s - $2, updated_at = now()
WHERE id = $1 AND %[1]s >= $2
RETURNING id, username, xenocoins, cash, created_at, updated_at
`, column)

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, userID, amount).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Xenocoins,
		&profile.Cash,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// either the profile is missing or the guard rejected the debit
			if _, getErr := r.Get(ctx, userID); getErr != nil {
				return model.Profile{}, getErr
			}
			return model.Profile{}, repo.ErrInsufficientBalance
		}
		return model.Profile{}, fmt.Errorf("debit %s: %w", column, err)
	}

	return profile, nil
}

func (r *ProfileRepo) CreditBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	if err := r.checkAdjustArgs(userID, currency, amount); err != nil {
		return model.Profile{}, err
	}

	column := balanceColumn(currency)
	query := fmt.Sprintf(`
UPDATE profiles
SET %[1]s = %[1]s + $2, updated_at = now()
WHERE id = $1
RETURNING id, username, xenocoins, cash, created_at, updated_at
`, column)

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, userID, amount).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Xenocoins,
		&profile.Cash,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, repo.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("credit %s: %w", column, err)
	}

	return profile, nil
}

func (r *ProfileRepo) checkAdjustArgs(userID uuid.UUID, currency enums.Currency, amount int64) error {
	if userID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if !currency.Valid() {
		return fmt.Errorf("invalid currency %q", currency)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return nil
}

func balanceColumn(currency enums.Currency) string {
	if currency == enums.CurrencyCash {
		return "cash"
	}
	return "xenocoins"
}
