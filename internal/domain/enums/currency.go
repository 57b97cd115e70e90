package enums

import (
	"fmt"
	"strings"
)

// Currency is the wallet a shop listing charges against.
type Currency string

const (
	CurrencyXenocoins Currency = "xenocoins"
	CurrencyCash      Currency = "cash"
)

func ParseCurrency(raw string) (Currency, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CurrencyXenocoins):
		return CurrencyXenocoins, nil
	case string(CurrencyCash):
		return CurrencyCash, nil
	default:
		return "", fmt.Errorf("unknown currency %q", raw)
	}
}

func (c Currency) Valid() bool {
	return c == CurrencyXenocoins || c == CurrencyCash
}

func (c Currency) String() string {
	return string(c)
}
