package dto

import (
	"time"

	"github.com/xenopets/backend/internal/domain/model"
)

type BalanceResponse struct {
	Xenocoins int64 `json:"xenocoins"`
	Cash      int64 `json:"cash"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Xenocoins int64     `json:"xenocoins"`
	Cash      int64     `json:"cash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func BalanceFromModel(balance model.Balance) BalanceResponse {
	return BalanceResponse{
		Xenocoins: balance.Xenocoins,
		Cash:      balance.Cash,
	}
}

func ProfileFromModel(profile model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        profile.ID.String(),
		Username:  profile.Username,
		Xenocoins: profile.Xenocoins,
		Cash:      profile.Cash,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
