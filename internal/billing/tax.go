package billing

import "github.com/shopspring/decimal"

// LineAmounts carries the derived monetary values of a bill line, each
// rounded to 2 decimal places, half away from zero. CGST and SGST stay as
// separate fields because GST law requires the split on the printed invoice
// even when both rates are equal.
type LineAmounts struct {
	TaxableValue float64
	CGSTAmount   float64
	SGSTAmount   float64
	TotalAmount  float64
}

var hundred = decimal.NewFromInt(100)

// ComputeLine derives the taxable value and tax split for one line. Pure and
// idempotent; callers validate quantity/rate positivity before calling, tax
// rates may independently be anywhere in [0, 100].
func ComputeLine(quantity, rate, cgstRate, sgstRate float64) LineAmounts {
	qty := decimal.NewFromFloat(quantity)
	unit := decimal.NewFromFloat(rate)

	taxable := qty.Mul(unit).Round(2)
	cgst := taxable.Mul(decimal.NewFromFloat(cgstRate)).Div(hundred).Round(2)
	sgst := taxable.Mul(decimal.NewFromFloat(sgstRate)).Div(hundred).Round(2)
	total := taxable.Add(cgst).Add(sgst)

	return LineAmounts{
		TaxableValue: taxable.InexactFloat64(),
		CGSTAmount:   cgst.InexactFloat64(),
		SGSTAmount:   sgst.InexactFloat64(),
		TotalAmount:  total.InexactFloat64(),
	}
}

// Consistent reports whether the stored amounts on line match a fresh
// recomputation from its quantity, rate and tax rates.
func Consistent(line BillLineItem) bool {
	want := ComputeLine(line.Quantity, line.Rate, line.CGSTRate, line.SGSTRate)
	return eq2(line.TaxableValue, want.TaxableValue) &&
		eq2(line.CGSTAmount, want.CGSTAmount) &&
		eq2(line.SGSTAmount, want.SGSTAmount) &&
		eq2(line.TotalAmount, want.TotalAmount)
}

func eq2(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
