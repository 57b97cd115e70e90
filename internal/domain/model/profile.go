package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
)

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Xenocoins int64     `json:"xenocoins"`
	Cash      int64     `json:"cash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Balance is the wallet snapshot returned to the client after a purchase.
type Balance struct {
	Xenocoins int64 `json:"xenocoins"`
	Cash      int64 `json:"cash"`
}

func (p Profile) Balance() Balance {
	return Balance{Xenocoins: p.Xenocoins, Cash: p.Cash}
}

func (p Profile) BalanceFor(currency enums.Currency) int64 {
	if currency == enums.CurrencyCash {
		return p.Cash
	}
	return p.Xenocoins
}
