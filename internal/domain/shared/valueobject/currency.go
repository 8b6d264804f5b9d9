package valueobject

import (
	"fmt"
	"strings"
)

// Currency represents a currency code accepted by the storefront
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	CUP Currency = "CUP" // Cuban Peso
	MLC Currency = "MLC" // Moneda Libremente Convertible
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is used when a product does not carry one
const DefaultCurrency = USD

// SupportedCurrencies lists every currency a product may be priced in
var SupportedCurrencies = []Currency{USD, CUP, MLC, EUR}

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes a currency code; blank input yields DefaultCurrency
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	c := Currency(code)
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency: %s", code)
	}
	return c, nil
}
