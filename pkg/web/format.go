package web

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders v as dollars with thousands separators and two
// decimals, e.g. "$1,465,000.00". The sign follows the dollar sign: "$-2,500.00".
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// formatNumber renders a form value without exponent notation.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
