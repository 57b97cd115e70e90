package dto

import (
	"github.com/xenopets/backend/internal/domain/model"
)

type ShopResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Rarity      string `json:"rarity,omitempty"`
	IsTradeable bool   `json:"is_tradeable"`
	ImagePath   string `json:"image_path,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type ShopItemResponse struct {
	ID          string        `json:"id"`
	ShopID      string        `json:"shop_id"`
	ItemID      string        `json:"item_id"`
	Price       int64         `json:"price"`
	Currency    string        `json:"currency"`
	StockLimit  *int64        `json:"stock_limit"`
	IsAvailable bool          `json:"is_available"`
	Item        *ItemResponse `json:"item,omitempty"`
}

func ShopFromModel(shop model.Shop) ShopResponse {
	return ShopResponse{
		ID:          shop.ID.String(),
		Name:        shop.Name,
		Description: shop.Description,
	}
}

func ItemFromModel(item model.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID.String(),
		Name:        item.Name,
		Type:        string(item.Type),
		Rarity:      item.Rarity,
		IsTradeable: item.IsTradeable,
		ImagePath:   item.ImagePath,
	}
}

func ShopItemFromModel(listing model.ShopItem) ShopItemResponse {
	resp := ShopItemResponse{
		ID:          listing.ID.String(),
		ShopID:      listing.ShopID.String(),
		ItemID:      listing.ItemID.String(),
		Price:       listing.Price,
		Currency:    listing.Currency.String(),
		StockLimit:  listing.StockLimit,
		IsAvailable: listing.IsAvailable,
	}
	if listing.Item != nil {
		item := ItemFromModel(*listing.Item)
		resp.Item = &item
	}
	return resp
}

func ShopItemsFromModels(listings []model.ShopItem) []ShopItemResponse {
	out := make([]ShopItemResponse, 0, len(listings))
	for _, listing := range listings {
		out = append(out, ShopItemFromModel(listing))
	}
	return out
}
