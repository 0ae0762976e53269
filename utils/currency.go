package utils

import "strings"

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// CurrencySymbol returns the display symbol for an ISO currency code.
func CurrencySymbol(currencyID string) (string, bool) {
	sym, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(currencyID))]
	return sym, ok
}
