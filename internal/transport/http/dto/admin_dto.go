package dto

type UpsertShopItemRequest struct {
	ID          string `json:"id,omitempty"`
	ShopID      string `json:"shop_id"`
	ItemID      string `json:"item_id"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	StockLimit  *int64 `json:"stock_limit"`
	IsAvailable bool   `json:"is_available"`
}

type RestockRequest struct {
	StockLimit *int64 `json:"stock_limit"`
}

type CreditRequest struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type CreditResponse struct {
	OK         bool            `json:"ok"`
	NewBalance BalanceResponse `json:"new_balance"`
}

type ItemImageResponse struct {
	ItemID    string `json:"item_id"`
	ImagePath string `json:"image_path"`
	URL       string `json:"url"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
