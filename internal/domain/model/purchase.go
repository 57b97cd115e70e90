package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
)

// PurchaseRecord is the audit row appended after a successful purchase.
type PurchaseRecord struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	ShopItemID uuid.UUID      `json:"shop_item_id"`
	ItemID     uuid.UUID      `json:"item_id"`
	Quantity   int64          `json:"quantity"`
	TotalCost  int64          `json:"total_cost"`
	Currency   enums.Currency `json:"currency"`
	CreatedAt  time.Time      `json:"created_at"`
}
