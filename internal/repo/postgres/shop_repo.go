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

type ShopRepo struct {
	pool *pgxpool.Pool
}

func NewShopRepo(pool *pgxpool.Pool) *ShopRepo {
	return &ShopRepo{pool: pool}
}

func (r *ShopRepo) ListShops(ctx context.Context) ([]model.Shop, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name, description
FROM shops
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var shop model.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.Description); err != nil {
			return nil, fmt.Errorf("scan shop row: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shop rows: %w", err)
	}

	return shops, nil
}

func (r *ShopRepo) ListItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, error) {
	if shopID == uuid.Nil {
		return nil, fmt.Errorf("shop id is required")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	si.id, si.shop_id, si.item_id, si.price, si.currency, si.stock_limit, si.is_available,
	i.id, i.name, i.type, i.rarity, i.is_tradeable, i.image_path
FROM shop_items si
JOIN items i ON i.id = si.item_id
WHERE si.shop_id = $1 AND si.is_available
ORDER BY i.name
`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	defer rows.Close()

	var listings []model.ShopItem
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shop item rows: %w", err)
	}

	return listings, nil
}

func (r *ShopRepo) GetAvailableItem(ctx context.Context, shopItemID uuid.UUID) (model.ShopItem, error) {
	if shopItemID == uuid.Nil {
		return model.ShopItem{}, fmt.Errorf("shop item id is required")
	}
	if r.pool == nil {
		return model.ShopItem{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT
	si.id, si.shop_id, si.item_id, si.price, si.currency, si.stock_limit, si.is_available,
	i.id, i.name, i.type, i.rarity, i.is_tradeable, i.image_path
FROM shop_items si
JOIN items i ON i.id = si.item_id
WHERE si.id = $1 AND si.is_available
`, shopItemID)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ShopItem{}, repo.ErrListingNotFound
		}
		return model.ShopItem{}, err
	}

	return listing, nil
}

// DecrementStock lowers stock_limit in one guarded statement; listings with
// NULL stock_limit are unlimited and left untouched.
func (r *ShopRepo) DecrementStock(ctx context.Context, shopItemID uuid.UUID, quantity int64) error {
	if shopItemID == uuid.Nil {
		return fmt.Errorf("shop item id is required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE shop_items
SET stock_limit = stock_limit - $2
WHERE id = $1 AND stock_limit IS NOT NULL AND stock_limit >= $2
`, shopItemID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var unlimited bool
	err = r.pool.QueryRow(ctx, `
SELECT stock_limit IS NULL
FROM shop_items
WHERE id = $1
`, shopItemID).Scan(&unlimited)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrListingNotFound
		}
		return fmt.Errorf("inspect stock limit: %w", err)
	}
	if unlimited {
		return nil
	}
	return repo.ErrInsufficientStock
}

func (r *ShopRepo) UpsertItem(ctx context.Context, listing model.ShopItem) (model.ShopItem, error) {
	if listing.ShopID == uuid.Nil || listing.ItemID == uuid.Nil {
		return model.ShopItem{}, fmt.Errorf("shop id and item id are required")
	}
	if listing.Price <= 0 {
		return model.ShopItem{}, fmt.Errorf("price must be positive")
	}
	if !listing.Currency.Valid() {
		return model.ShopItem{}, fmt.Errorf("invalid currency %q", listing.Currency)
	}
	if r.pool == nil {
		return model.ShopItem{}, fmt.Errorf("postgres pool is nil")
	}

	id := listing.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var saved model.ShopItem
	err := r.pool.QueryRow(ctx, `
INSERT INTO shop_items (id, shop_id, item_id, price, currency, stock_limit, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	price = EXCLUDED.price,
	currency = EXCLUDED.currency,
	stock_limit = EXCLUDED.stock_limit,
	is_available = EXCLUDED.is_available
RETURNING id, shop_id, item_id, price, currency, stock_limit, is_available
`, id, listing.ShopID, listing.ItemID, listing.Price, listing.Currency, listing.StockLimit, listing.IsAvailable).Scan(
		&saved.ID,
		&saved.ShopID,
		&saved.ItemID,
		&saved.Price,
		&saved.Currency,
		&saved.StockLimit,
		&saved.IsAvailable,
	)
	if err != nil {
		return model.ShopItem{}, fmt.Errorf("upsert shop item: %w", err)
	}

	return saved, nil
}

func (r *ShopRepo) Restock(ctx context.Context, shopItemID uuid.UUID, stockLimit *int64) error {
	if shopItemID == uuid.Nil {
		return fmt.Errorf("shop item id is required")
	}
	if stockLimit != nil && *stockLimit < 0 {
		return fmt.Errorf("stock limit must not be negative")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE shop_items
SET stock_limit = $2
WHERE id = $1
`, shopItemID, stockLimit)
	if err != nil {
		return fmt.Errorf("restock shop item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrListingNotFound
	}
	return nil
}

func (r *ShopRepo) UpdateItemImage(ctx context.Context, itemID uuid.UUID, imagePath string) error {
	if itemID == uuid.Nil {
		return fmt.Errorf("item id is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE items
SET image_path = $2
WHERE id = $1
`, itemID, imagePath)
	if err != nil {
		return fmt.Errorf("update item image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrItemNotFound
	}
	return nil
}

type pgxScanner interface {
	Scan(dest ...any) error
}

func scanListing(row pgxScanner) (model.ShopItem, error) {
	var (
		listing  model.ShopItem
		item     model.Item
		itemType string
		currency string
	)
	err := row.Scan(
		&listing.ID,
		&listing.ShopID,
		&listing.ItemID,
		&listing.Price,
		&currency,
		&listing.StockLimit,
		&listing.IsAvailable,
		&item.ID,
		&item.Name,
		&itemType,
		&item.Rarity,
		&item.IsTradeable,
		&item.ImagePath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ShopItem{}, err
		}
		return model.ShopItem{}, fmt.Errorf("scan shop item row: %w", err)
	}

	listing.Currency = enums.Currency(currency)
	item.Type = enums.NormalizeItemType(itemType)
	listing.Item = &item
	return listing, nil
}
