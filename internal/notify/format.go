package notify

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var svPrinter = message.NewPrinter(language.Swedish)

// FormatPrice renders whole kronor the Swedish way, e.g. "1 234 kr". Several
// prices render the lowest as "Från ...".
func FormatPrice(prices ...float64) string {
	if len(prices) == 0 {
		return ""
	}
	lo, hi := slices.Min(prices), slices.Max(prices)

	formatted := svPrinter.Sprintf("%v kr", number.Decimal(math.Round(lo), number.MaxFractionDigits(0)))
	formatted = strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(formatted)

	if lo == hi {
		return formatted
	}
	return "Från " + formatted
}
