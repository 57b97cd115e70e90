package dto

// Quantity is a pointer so an omitted field can be told apart from an
// explicit zero; a missing quantity means one unit.
type PurchaseRequest struct {
	ShopItemID string `json:"shop_item_id"`
	Quantity   *int64 `json:"quantity"`
}

type PurchaseResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	NewBalance *BalanceResponse `json:"new_balance,omitempty"`
}

type AffordabilityRequest struct {
	ShopItemID string `json:"shop_item_id"`
	Quantity   *int64 `json:"quantity"`
}

type AffordabilityResponse struct {
	CanAfford bool `json:"can_afford"`
}
