package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLines is returned when a bill would carry no line items.
	ErrNoLines = errors.New("billing: bill requires at least one line item")
	// ErrLineInconsistent is returned when a line's stored amounts do not
	// match recomputation from its inputs.
	ErrLineInconsistent = errors.New("billing: line amounts inconsistent")
)

// Totals are the invoice-level sums. They are accumulated from the already
// rounded per-line values rather than recomputed from raw quantity × rate,
// so the printed line items and the footer always foot exactly.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	CGSTAmount float64 `json:"cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount"`
	Total      float64 `json:"total_amount"`
}

// Aggregate sums lines into invoice totals. Every line must satisfy its own
// arithmetic invariant; the list must be non-empty.
func Aggregate(lines []BillLineItem) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrNoLines
	}
	subtotal := decimal.Zero
	cgst := decimal.Zero
	sgst := decimal.Zero
	total := decimal.Zero
	for i, line := range lines {
		if !Consistent(line) {
			return Totals{}, fmt.Errorf("%w: line %d", ErrLineInconsistent, i+1)
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(line.TaxableValue))
		cgst = cgst.Add(decimal.NewFromFloat(line.CGSTAmount))
		sgst = sgst.Add(decimal.NewFromFloat(line.SGSTAmount))
		total = total.Add(decimal.NewFromFloat(line.TotalAmount))
	}
	return Totals{
		Subtotal:   subtotal.InexactFloat64(),
		CGSTAmount: cgst.InexactFloat64(),
		SGSTAmount: sgst.InexactFloat64(),
		Total:      total.InexactFloat64(),
	}, nil
}

// HSNGroup is one aggregate row of the regulatory HSN/SAC summary table.
type HSNGroup struct {
	Code       string  `json:"code"`
	TaxableSum float64 `json:"taxable_sum"`
	CGSTSum    float64 `json:"cgst_sum"`
	SGSTSum    float64 `json:"sgst_sum"`
	TaxSum     float64 `json:"tax_sum"`
}

// GroupByHSN partitions lines by their literal HSN/SAC code string. No
// trimming or case folding happens here: the invoice must reflect exactly
// what the operator typed, so "8708" and "8708 " form distinct groups.
// Groups appear in first-seen order among the lines.
func GroupByHSN(lines []BillLineItem) []HSNGroup {
	type acc struct {
		taxable, cgst, sgst decimal.Decimal
	}
	index := make(map[string]int, len(lines))
	var order []string
	sums := make(map[string]*acc, len(lines))
	for _, line := range lines {
		if _, seen := index[line.HSNCode]; !seen {
			index[line.HSNCode] = len(order)
			order = append(order, line.HSNCode)
			sums[line.HSNCode] = &acc{}
		}
		a := sums[line.HSNCode]
		a.taxable = a.taxable.Add(decimal.NewFromFloat(line.TaxableValue))
		a.cgst = a.cgst.Add(decimal.NewFromFloat(line.CGSTAmount))
		a.sgst = a.sgst.Add(decimal.NewFromFloat(line.SGSTAmount))
	}
	groups := make([]HSNGroup, 0, len(order))
	for _, code := range order {
		a := sums[code]
		groups = append(groups, HSNGroup{
			Code:       code,
			TaxableSum: a.taxable.InexactFloat64(),
			CGSTSum:    a.cgst.InexactFloat64(),
			SGSTSum:    a.sgst.InexactFloat64(),
			TaxSum:     a.cgst.Add(a.sgst).InexactFloat64(),
		})
	}
	return groups
}

// HSNSummary returns the HSN groups followed by the synthetic trailing
// "Total" row printed on the invoice.
func HSNSummary(lines []BillLineItem) []HSNGroup {
	groups := GroupByHSN(lines)
	taxable := decimal.Zero
	cgst := decimal.Zero
	sgst := decimal.Zero
	for _, g := range groups {
		taxable = taxable.Add(decimal.NewFromFloat(g.TaxableSum))
		cgst = cgst.Add(decimal.NewFromFloat(g.CGSTSum))
		sgst = sgst.Add(decimal.NewFromFloat(g.SGSTSum))
	}
	return append(groups, HSNGroup{
		Code:       "Total",
		TaxableSum: taxable.InexactFloat64(),
		CGSTSum:    cgst.InexactFloat64(),
		SGSTSum:    sgst.InexactFloat64(),
		TaxSum:     cgst.Add(sgst).InexactFloat64(),
	})
}

// EffectiveTaxPercent is the combined tax percentage shown in the invoice
// summary, rounded to the nearest whole percent. Zero subtotal yields 0.
func EffectiveTaxPercent(totals Totals) int {
	if totals.Subtotal == 0 {
		return 0
	}
	tax := decimal.NewFromFloat(totals.CGSTAmount).Add(decimal.NewFromFloat(totals.SGSTAmount))
	pct := tax.Div(decimal.NewFromFloat(totals.Subtotal)).Mul(hundred).Round(0)
	return int(pct.IntPart())
}
