package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenopets/backend/internal/domain/model"
)

// PurchaseRepo appends to and prunes the purchases audit table.
type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

func (r *PurchaseRepo) Append(ctx context.Context, record model.PurchaseRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO purchases (id, user_id, shop_item_id, item_id, quantity, total_cost, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, id, record.UserID, record.ShopItemID, record.ItemID, record.Quantity, record.TotalCost, record.Currency)
	if err != nil {
		return fmt.Errorf("append purchase record: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM purchases
WHERE created_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune purchase records: %w", err)
	}
	return tag.RowsAffected(), nil
}
