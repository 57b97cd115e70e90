package model

import (
	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
)

type Item struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Type        enums.ItemType `json:"type"`
	Rarity      string         `json:"rarity"`
	IsTradeable bool           `json:"is_tradeable"`
	ImagePath   string         `json:"image_path"`
}
