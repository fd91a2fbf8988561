package equivalency

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:gochecknoglobals // message printers are meant to be shared
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats a float with thousand separators and fixed precision.
// FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	if precision <= 0 {
		return FormatNumber(int64(math.Round(f)))
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", precision), f)
}

// FormatLarge abbreviates millions and billions ("~1.5 billion").
// Smaller values use FormatNumber.
func FormatLarge(n float64) string {
	switch {
	case n >= billionNumberThreshold:
		return fmt.Sprintf("~%.1f billion", n/billionNumberThreshold)
	case n >= largeNumberThreshold:
		return fmt.Sprintf("~%.1f million", n/largeNumberThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}
