package enums

import "strings"

// ItemType mirrors the catalog taxonomy used by the game client.
type ItemType string

const (
	ItemTypeFood       ItemType = "food"
	ItemTypeToy        ItemType = "toy"
	ItemTypeEquipment  ItemType = "equipment"
	ItemTypeCosmetic   ItemType = "cosmetic"
	ItemTypeConsumable ItemType = "consumable"
)

func NormalizeItemType(raw string) ItemType {
	return ItemType(strings.ToLower(strings.TrimSpace(raw)))
}
