package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

var (
	errNoRows    = errors.New("no rows matched")
	errDuplicate = errors.New("duplicate row")
)

// casAttempts bounds the read-compare-patch loop used for guarded writes.
// PostgREST cannot apply column arithmetic in a PATCH, so the old value is
// pinned with an extra equality filter instead.
const casAttempts = 3

type ProfileRepo struct {
	client *Client
}

type profileRow struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Xenocoins int64     `json:"xenocoins"`
	Cash      int64     `json:"cash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProfileRepo(client *Client) *ProfileRepo {
	return &ProfileRepo{client: client}
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("user id is required")
	}

	var row profileRow
	query := "id=eq." + url.QueryEscape(userID.String()) + "&limit=1"
	if err := r.client.getOne(ctx, "profiles", query, &row); err != nil {
		if errors.Is(err, errNoRows) {
			return model.Profile{}, repo.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return row.toModel(), nil
}

// DebitBalance subtracts amount from the matching wallet only while the
// wallet still covers it. The old value is pinned in the PATCH filter; an
// empty representation means another writer got there first and the read is
// repeated.
func (r *ProfileRepo) DebitBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	return r.adjustBalance(ctx, userID, currency, amount, true)
}

// CreditBalance adds amount to the matching wallet. Used by game systems
// granting currency and by the purchase compensation path.
func (r *ProfileRepo) CreditBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	return r.adjustBalance(ctx, userID, currency, amount, false)
}

func (r *ProfileRepo) adjustBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64, debit bool) (model.Profile, error) {
	if userID == uuid.Nil {
		return model.Profile{}, fmt.Errorf("user id is required")
	}
	if !currency.Valid() {
		return model.Profile{}, fmt.Errorf("invalid currency %q", currency)
	}
	if amount <= 0 {
		return model.Profile{}, fmt.Errorf("amount must be positive")
	}

	column := balanceColumn(currency)

	for attempt := 0; attempt < casAttempts; attempt++ {
		current, err := r.Get(ctx, userID)
		if err != nil {
			return model.Profile{}, err
		}

		before := current.BalanceFor(currency)
		next := before + amount
		if debit {
			if before < amount {
				return model.Profile{}, repo.ErrInsufficientBalance
			}
			next = before - amount
		}

		query := fmt.Sprintf("id=eq.%s&%s=eq.%d",
			url.QueryEscape(userID.String()), column, before)
		body := map[string]any{column: next}

		var updated []profileRow
		if err := r.client.patch(ctx, "profiles", query, body, &updated); err != nil {
			return model.Profile{}, fmt.Errorf("update %s balance: %w", column, err)
		}
		if len(updated) > 0 {
			return updated[0].toModel(), nil
		}
		// guard column moved underneath us, re-read and retry
	}

	return model.Profile{}, fmt.Errorf("adjust %s balance for %s: %w", column, userID, repo.ErrConflict)
}

func (row profileRow) toModel() model.Profile {
	return model.Profile{
		ID:        row.ID,
		Username:  row.Username,
		Xenocoins: row.Xenocoins,
		Cash:      row.Cash,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func balanceColumn(currency enums.Currency) string {
	if currency == enums.CurrencyCash {
		return "cash"
	}
	return "xenocoins"
}
