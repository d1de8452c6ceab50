package invoicepdf

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts print with Indian digit grouping, so one lakh reads 1,00,000.00.
var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders a rupee value with the INR symbol and two decimals.
func FormatAmount(v float64) string {
	return "₹" + inr.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatQuantity renders a quantity without trailing zero noise: whole
// quantities print as integers, fractional ones keep up to three decimals.
func FormatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return inr.Sprintf("%v", number.Decimal(q, number.MaxFractionDigits(3)))
}
