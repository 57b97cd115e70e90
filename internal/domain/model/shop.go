package model

import (
	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
)

type Shop struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// ShopItem is a priced, possibly stock-limited listing of an Item in a Shop.
// StockLimit nil means the listing never sells out.
type ShopItem struct {
	ID          uuid.UUID      `json:"id"`
	ShopID      uuid.UUID      `json:"shop_id"`
	ItemID      uuid.UUID      `json:"item_id"`
	Price       int64          `json:"price"`
	Currency    enums.Currency `json:"currency"`
	StockLimit  *int64         `json:"stock_limit"`
	IsAvailable bool           `json:"is_available"`
	Item        *Item          `json:"item,omitempty"`
}

func (s ShopItem) InStock(quantity int64) bool {
	if s.StockLimit == nil {
		return true
	}
	return *s.StockLimit >= quantity
}
