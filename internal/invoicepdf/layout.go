// Package invoicepdf renders GST tax invoices as PDF documents. The layout
// is assembled as plain data first so the content can be verified without
// parsing PDF output.
package invoicepdf

import (
	"fmt"

	"github.com/partsdesk/partsdesk/internal/billing"
)

// CompanyProfile is the seller identity printed on every invoice letterhead.
type CompanyProfile struct {
	Name        string
	Address     string
	GSTIN       string
	Phone       string
	BankDetails string
	Terms       string
}

// MetaField is one label/value pair in the invoice header block.
type MetaField struct {
	Label string
	Value string
}

// TableRow is one rendered line of the 9-column item table.
type TableRow struct {
	Description  string
	HSNCode      string
	Quantity     string
	Unit         string
	Rate         string
	TaxableValue string
	CGST         string
	SGST         string
	Amount       string
}

// SummaryRow is one label/value pair in the totals block.
type SummaryRow struct {
	Label string
	Value string
	Bold  bool
}

// HSNRow is one line of the HSN/SAC summary table, including the trailing
// Total row.
type HSNRow struct {
	Code    string
	Taxable string
	CGST    string
	SGST    string
	Tax     string
}

// Layout is the complete, ordered content of an invoice page.
type Layout struct {
	Company   CompanyProfile
	Title     string
	Meta      []MetaField
	BillTo    []string
	Columns   []string
	Rows      []TableRow
	Summary   []SummaryRow
	HSNRows   []HSNRow
	Terms     string
	Bank      string
	Signature string
}

// ItemColumns is the fixed header of the line item table.
var ItemColumns = []string{"Description", "HSN/SAC", "Qty", "Unit", "Rate", "Taxable Value", "CGST", "SGST", "Total"}

// BuildLayout assembles the printable invoice content for a bill. Empty
// party fields are omitted from the Bill To block rather than printed blank.
func BuildLayout(bill billing.Bill, company CompanyProfile) Layout {
	l := Layout{
		Company: company,
		Title:   "TAX INVOICE",
		Meta: []MetaField{
			{Label: "Invoice No", Value: bill.BillNumber},
			{Label: "Date", Value: bill.BillDate.Format("02-01-2006")},
		},
		Columns:   ItemColumns,
		Terms:     company.Terms,
		Bank:      company.BankDetails,
		Signature: fmt.Sprintf("For %s", company.Name),
	}
	if bill.PlaceOfSupply != "" {
		l.Meta = append(l.Meta, MetaField{Label: "Place of Supply", Value: bill.PlaceOfSupply})
	}

	l.BillTo = append(l.BillTo, bill.PartyName)
	if bill.PartyAddress != "" {
		l.BillTo = append(l.BillTo, bill.PartyAddress)
	}
	if bill.PartyGSTIN != "" {
		l.BillTo = append(l.BillTo, "GSTIN: "+bill.PartyGSTIN)
	}
	if bill.PartyPhone != "" {
		l.BillTo = append(l.BillTo, "Phone: "+bill.PartyPhone)
	}

	for _, line := range bill.Lines {
		l.Rows = append(l.Rows, TableRow{
			Description:  line.Description,
			HSNCode:      line.HSNCode,
			Quantity:     FormatQuantity(line.Quantity),
			Unit:         string(line.Unit),
			Rate:         FormatAmount(line.Rate),
			TaxableValue: FormatAmount(line.TaxableValue),
			CGST:         FormatAmount(line.CGSTAmount),
			SGST:         FormatAmount(line.SGSTAmount),
			Amount:       FormatAmount(line.TotalAmount),
		})
	}

	totals := billing.Totals{
		Subtotal:   bill.Subtotal,
		CGSTAmount: bill.CGSTAmount,
		SGSTAmount: bill.SGSTAmount,
		Total:      bill.TotalAmount,
	}
	pct := billing.EffectiveTaxPercent(totals)
	tax := totals.CGSTAmount + totals.SGSTAmount
	l.Summary = []SummaryRow{
		{Label: "Subtotal", Value: FormatAmount(totals.Subtotal)},
		{Label: "CGST", Value: FormatAmount(totals.CGSTAmount)},
		{Label: "SGST", Value: FormatAmount(totals.SGSTAmount)},
		{Label: fmt.Sprintf("Total Tax @ %d%%", pct), Value: FormatAmount(tax)},
		{Label: "Grand Total", Value: FormatAmount(totals.Total), Bold: true},
		{Label: "Remaining", Value: FormatAmount(bill.RemainingAmount)},
	}

	for _, g := range billing.HSNSummary(bill.Lines) {
		l.HSNRows = append(l.HSNRows, HSNRow{
			Code:    g.Code,
			Taxable: FormatAmount(g.TaxableSum),
			CGST:    FormatAmount(g.CGSTSum),
			SGST:    FormatAmount(g.SGSTSum),
			Tax:     FormatAmount(g.TaxSum),
		})
	}

	return l
}
