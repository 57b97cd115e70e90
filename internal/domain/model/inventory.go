package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryEntry is one (user, item) stack; quantity grows across repeated
// purchases of the same item.
type InventoryEntry struct {
	UserID     uuid.UUID `json:"user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Quantity   int64     `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
	Item       *Item     `json:"item,omitempty"`
}
