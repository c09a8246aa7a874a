package helpers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatGrouped prints v with comma thousands separators and exactly decimals
// digits after the point.
func FormatGrouped(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return printer.Sprintf("%.*f", decimals, v)
}
