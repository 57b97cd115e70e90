package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
)

type InventoryRepo struct {
	pool *pgxpool.Pool
}

func NewInventoryRepo(pool *pgxpool.Pool) *InventoryRepo {
	return &InventoryRepo{pool: pool}
}

// Add stacks quantity onto the (user, item) row, creating it when missing.
func (r *InventoryRepo) Add(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("user id and item id are required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO inventory (user_id, item_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, item_id) DO UPDATE SET
	quantity = inventory.quantity + EXCLUDED.quantity
`, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("add inventory entry: %w", err)
	}
	return nil
}

// Remove takes quantity back out of a stack, dropping the row at zero.
func (r *InventoryRepo) Remove(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("user id and item id are required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE inventory
SET quantity = quantity - $3
WHERE user_id = $1 AND item_id = $2 AND quantity > $3
`, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("shrink inventory entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = r.pool.Exec(ctx, `
DELETE FROM inventory
WHERE user_id = $1 AND item_id = $2 AND quantity <= $3
`, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("delete drained inventory entry: %w", err)
	}
	return nil
}

func (r *InventoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.InventoryEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	inv.user_id, inv.item_id, inv.quantity, inv.acquired_at,
	i.id, i.name, i.type, i.rarity, i.is_tradeable, i.image_path
FROM inventory inv
JOIN items i ON i.id = inv.item_id
WHERE inv.user_id = $1
ORDER BY inv.acquired_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var entries []model.InventoryEntry
	for rows.Next() {
		var (
			entry    model.InventoryEntry
			item     model.Item
			itemType string
		)
		err := rows.Scan(
			&entry.UserID,
			&entry.ItemID,
			&entry.Quantity,
			&entry.AcquiredAt,
			&item.ID,
			&item.Name,
			&itemType,
			&item.Rarity,
			&item.IsTradeable,
			&item.ImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		item.Type = enums.NormalizeItemType(itemType)
		entry.Item = &item
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory rows: %w", err)
	}

	return entries, nil
}
