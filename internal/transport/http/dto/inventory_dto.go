package dto

import (
	"time"

	"github.com/xenopets/backend/internal/domain/model"
)

type InventoryEntryResponse struct {
	ItemID     string        `json:"item_id"`
	Quantity   int64         `json:"quantity"`
	AcquiredAt time.Time     `json:"acquired_at"`
	Item       *ItemResponse `json:"item,omitempty"`
}

func InventoryFromModels(entries []model.InventoryEntry) []InventoryEntryResponse {
	out := make([]InventoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp := InventoryEntryResponse{
			ItemID:     entry.ItemID.String(),
			Quantity:   entry.Quantity,
			AcquiredAt: entry.AcquiredAt,
		}
		if entry.Item != nil {
			item := ItemFromModel(*entry.Item)
			resp.Item = &item
		}
		out = append(out, resp)
	}
	return out
}
