package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func PositiveQuantity(quantity int64) bool {
	return quantity >= 1
}
