package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type ShopRepo struct {
	client *Client
}

type shopRow struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type itemRow struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Rarity      string    `json:"rarity"`
	IsTradeable bool      `json:"is_tradeable"`
	ImagePath   string    `json:"image_path"`
}

type shopItemRow struct {
	ID          uuid.UUID `json:"id"`
	ShopID      uuid.UUID `json:"shop_id"`
	ItemID      uuid.UUID `json:"item_id"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	StockLimit  *int64    `json:"stock_limit"`
	IsAvailable bool      `json:"is_available"`
	Item        *itemRow  `json:"item"`
}

// shopItemSelect embeds the parent item row in one round trip.
const shopItemSelect = "select=*,item:items(*)"

func NewShopRepo(client *Client) *ShopRepo {
	return &ShopRepo{client: client}
}

func (r *ShopRepo) ListShops(ctx context.Context) ([]model.Shop, error) {
	var rows []shopRow
	if err := r.client.getList(ctx, "shops", "select=*&order=name.asc", &rows); err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}

	shops := make([]model.Shop, 0, len(rows))
	for _, row := range rows {
		shops = append(shops, model.Shop{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return shops, nil
}

func (r *ShopRepo) ListItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, error) {
	if shopID == uuid.Nil {
		return nil, fmt.Errorf("shop id is required")
	}

	var rows []shopItemRow
	query := shopItemSelect + "&shop_id=eq." + url.QueryEscape(shopID.String()) + "&is_available=is.true"
	if err := r.client.getList(ctx, "shop_items", query, &rows); err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}

	items := make([]model.ShopItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// GetAvailableItem fetches one available listing joined with its item.
func (r *ShopRepo) GetAvailableItem(ctx context.Context, shopItemID uuid.UUID) (model.ShopItem, error) {
	if shopItemID == uuid.Nil {
		return model.ShopItem{}, fmt.Errorf("shop item id is required")
	}

	var row shopItemRow
	query := shopItemSelect + "&id=eq." + url.QueryEscape(shopItemID.String()) + "&is_available=is.true&limit=1"
	if err := r.client.getOne(ctx, "shop_items", query, &row); err != nil {
		if errors.Is(err, errNoRows) {
			return model.ShopItem{}, repo.ErrListingNotFound
		}
		return model.ShopItem{}, fmt.Errorf("get shop item: %w", err)
	}

	return row.toModel(), nil
}

// DecrementStock lowers stock_limit by quantity only while enough stock
// remains, pinning the previous value in the PATCH filter.
func (r *ShopRepo) DecrementStock(ctx context.Context, shopItemID uuid.UUID, quantity int64) error {
	if shopItemID == uuid.Nil {
		return fmt.Errorf("shop item id is required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		listing, err := r.GetAvailableItem(ctx, shopItemID)
		if err != nil {
			return err
		}
		if listing.StockLimit == nil {
			return nil
		}
		if *listing.StockLimit < quantity {
			return repo.ErrInsufficientStock
		}

		query := fmt.Sprintf("id=eq.%s&stock_limit=eq.%d",
			url.QueryEscape(shopItemID.String()), *listing.StockLimit)
		body := map[string]any{"stock_limit": *listing.StockLimit - quantity}

		var updated []shopItemRow
		if err := r.client.patch(ctx, "shop_items", query, body, &updated); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if len(updated) > 0 {
			return nil
		}
	}

	return fmt.Errorf("decrement stock for %s: %w", shopItemID, repo.ErrConflict)
}

// UpsertItem creates or replaces a listing (admin surface).
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

	body := map[string]any{
		"shop_id":      listing.ShopID,
		"item_id":      listing.ItemID,
		"price":        listing.Price,
		"currency":     listing.Currency,
		"stock_limit":  listing.StockLimit,
		"is_available": listing.IsAvailable,
	}

	if listing.ID != uuid.Nil {
		query := "id=eq." + url.QueryEscape(listing.ID.String())
		var updated []shopItemRow
		if err := r.client.patch(ctx, "shop_items", query, body, &updated); err != nil {
			return model.ShopItem{}, fmt.Errorf("update shop item: %w", err)
		}
		if len(updated) == 0 {
			return model.ShopItem{}, repo.ErrListingNotFound
		}
		return updated[0].toModel(), nil
	}

	var inserted []shopItemRow
	if err := r.client.insert(ctx, "shop_items", body, &inserted); err != nil {
		return model.ShopItem{}, fmt.Errorf("insert shop item: %w", err)
	}
	if len(inserted) == 0 {
		return model.ShopItem{}, fmt.Errorf("insert shop item: empty representation")
	}
	return inserted[0].toModel(), nil
}

// Restock overwrites stock_limit; nil makes the listing unlimited.
func (r *ShopRepo) Restock(ctx context.Context, shopItemID uuid.UUID, stockLimit *int64) error {
	if shopItemID == uuid.Nil {
		return fmt.Errorf("shop item id is required")
	}
	if stockLimit != nil && *stockLimit < 0 {
		return fmt.Errorf("stock limit must not be negative")
	}

	query := "id=eq." + url.QueryEscape(shopItemID.String())
	var updated []shopItemRow
	if err := r.client.patch(ctx, "shop_items", query, map[string]any{"stock_limit": stockLimit}, &updated); err != nil {
		return fmt.Errorf("restock shop item: %w", err)
	}
	if len(updated) == 0 {
		return repo.ErrListingNotFound
	}
	return nil
}

// UpdateItemImage stores the uploaded object key on the catalog item.
func (r *ShopRepo) UpdateItemImage(ctx context.Context, itemID uuid.UUID, imagePath string) error {
	if itemID == uuid.Nil {
		return fmt.Errorf("item id is required")
	}

	query := "id=eq." + url.QueryEscape(itemID.String())
	var updated []itemRow
	if err := r.client.patch(ctx, "items", query, map[string]any{"image_path": imagePath}, &updated); err != nil {
		return fmt.Errorf("update item image: %w", err)
	}
	if len(updated) == 0 {
		return repo.ErrItemNotFound
	}
	return nil
}

func (row shopItemRow) toModel() model.ShopItem {
	listing := model.ShopItem{
		ID:          row.ID,
		ShopID:      row.ShopID,
		ItemID:      row.ItemID,
		Price:       row.Price,
		Currency:    enums.Currency(row.Currency),
		StockLimit:  row.StockLimit,
		IsAvailable: row.IsAvailable,
	}
	if row.Item != nil {
		item := row.Item.toModel()
		listing.Item = &item
	}
	return listing
}

func (row itemRow) toModel() model.Item {
	return model.Item{
		ID:          row.ID,
		Name:        row.Name,
		Type:        enums.NormalizeItemType(row.Type),
		Rarity:      row.Rarity,
		IsTradeable: row.IsTradeable,
		ImagePath:   row.ImagePath,
	}
}
