package supabase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/xenopets/backend/internal/domain/model"
)

// PurchaseRepo appends to and prunes the purchases audit table.
type PurchaseRepo struct {
	client *Client
}

func NewPurchaseRepo(client *Client) *PurchaseRepo {
	return &PurchaseRepo{client: client}
}

func (r *PurchaseRepo) Append(ctx context.Context, record model.PurchaseRecord) error {
	body := map[string]any{
		"user_id":      record.UserID,
		"shop_item_id": record.ShopItemID,
		"item_id":      record.ItemID,
		"quantity":     record.Quantity,
		"total_cost":   record.TotalCost,
		"currency":     record.Currency,
	}
	if err := r.client.insert(ctx, "purchases", body, nil); err != nil {
		return fmt.Errorf("append purchase record: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "created_at=lt." + url.QueryEscape(cutoff.UTC().Format(time.RFC3339))
	count, err := r.client.deletedCount(ctx, "purchases", query)
	if err != nil {
		return 0, fmt.Errorf("prune purchase records: %w", err)
	}
	return count, nil
}
