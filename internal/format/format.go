// Package format renders money and percentages for display in US English.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders amount as US dollars, e.g. 1234.5 -> "$1,234.50"
func FormatCurrency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "$NaN"
	case math.IsInf(amount, 1):
		return "$∞"
	case math.IsInf(amount, -1):
		return "-$∞"
	}
	// Round first so -0.001 does not print as "-$0.00"
	rounded := math.Round(amount*100) / 100
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	if rounded < 0 {
		return "-$" + printer.Sprintf("%.2f", -rounded)
	}
	return "$" + printer.Sprintf("%.2f", rounded)
}

// FormatPercentage renders value (already scaled to 0-100) with one decimal, e.g. 12.34 -> "12.3%"
func FormatPercentage(value float64) string {
	if math.IsNaN(value) {
		return "NaN%"
	}
	return printer.Sprintf("%.1f", value) + "%"
}

// FormatNumber renders a whole number with thousands separators
func FormatNumber(v float64) string {
	return printer.Sprintf("%.0f", v)
}
