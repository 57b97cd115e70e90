package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type InventoryRepo struct {
	client *Client
}

type inventoryRow struct {
	UserID     uuid.UUID `json:"user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Quantity   int64     `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
	Item       *itemRow  `json:"item"`
}

func NewInventoryRepo(client *Client) *InventoryRepo {
	return &InventoryRepo{client: client}
}

// Add grants quantity units of an item, stacking onto an existing
// (user, item) row when one exists. A lost insert race falls back to the
// stacking path on the next attempt.
func (r *InventoryRepo) Add(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("user id and item id are required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, found, err := r.get(ctx, userID, itemID)
		if err != nil {
			return err
		}

		if !found {
			body := map[string]any{
				"user_id":  userID,
				"item_id":  itemID,
				"quantity": quantity,
			}
			err := r.client.insert(ctx, "inventory", body, nil)
			if err == nil {
				return nil
			}
			if errors.Is(err, errDuplicate) {
				continue
			}
			return fmt.Errorf("insert inventory entry: %w", err)
		}

		query := fmt.Sprintf("user_id=eq.%s&item_id=eq.%s&quantity=eq.%d",
			url.QueryEscape(userID.String()), url.QueryEscape(itemID.String()), existing.Quantity)
		body := map[string]any{"quantity": existing.Quantity + quantity}

		var updated []inventoryRow
		if err := r.client.patch(ctx, "inventory", query, body, &updated); err != nil {
			return fmt.Errorf("stack inventory entry: %w", err)
		}
		if len(updated) > 0 {
			return nil
		}
	}

	return fmt.Errorf("add inventory for %s/%s: %w", userID, itemID, repo.ErrConflict)
}

// Remove takes quantity units back out of a stack, deleting the row when it
// reaches zero. Used only by the purchase compensation path.
func (r *InventoryRepo) Remove(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return fmt.Errorf("user id and item id are required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		existing, found, err := r.get(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		pair := fmt.Sprintf("user_id=eq.%s&item_id=eq.%s",
			url.QueryEscape(userID.String()), url.QueryEscape(itemID.String()))

		if existing.Quantity <= quantity {
			if err := r.client.delete(ctx, "inventory", pair); err != nil {
				return fmt.Errorf("delete inventory entry: %w", err)
			}
			return nil
		}

		query := fmt.Sprintf("%s&quantity=eq.%d", pair, existing.Quantity)
		body := map[string]any{"quantity": existing.Quantity - quantity}

		var updated []inventoryRow
		if err := r.client.patch(ctx, "inventory", query, body, &updated); err != nil {
			return fmt.Errorf("shrink inventory entry: %w", err)
		}
		if len(updated) > 0 {
			return nil
		}
	}

	return fmt.Errorf("remove inventory for %s/%s: %w", userID, itemID, repo.ErrConflict)
}

func (r *InventoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.InventoryEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	var rows []inventoryRow
	query := "select=*,item:items(*)&user_id=eq." + url.QueryEscape(userID.String()) + "&order=acquired_at.desc"
	if err := r.client.getList(ctx, "inventory", query, &rows); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	entries := make([]model.InventoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

func (r *InventoryRepo) get(ctx context.Context, userID, itemID uuid.UUID) (inventoryRow, bool, error) {
	var row inventoryRow
	query := fmt.Sprintf("user_id=eq.%s&item_id=eq.%s&limit=1",
		url.QueryEscape(userID.String()), url.QueryEscape(itemID.String()))
	if err := r.client.getOne(ctx, "inventory", query, &row); err != nil {
		if errors.Is(err, errNoRows) {
			return inventoryRow{}, false, nil
		}
		return inventoryRow{}, false, fmt.Errorf("get inventory entry: %w", err)
	}
	return row, true, nil
}

func (row inventoryRow) toModel() model.InventoryEntry {
	entry := model.InventoryEntry{
		UserID:     row.UserID,
		ItemID:     row.ItemID,
		Quantity:   row.Quantity,
		AcquiredAt: row.AcquiredAt,
	}
	if row.Item != nil {
		item := row.Item.toModel()
		entry.Item = &item
	}
	return entry
}
