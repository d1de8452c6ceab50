package invoicepdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/internal/billing"
)

var testCompany = CompanyProfile{
	Name:        "Sai Balaji Auto Parts",
	Address:     "Main Road, Guntur, Andhra Pradesh 522001",
	GSTIN:       "37AAICP9359G1ZU",
	Phone:       "9876543210",
	BankDetails: "SBI Guntur, A/C 1234567890, IFSC SBIN0001234",
	Terms:       "Goods once sold will not be taken back.",
}

func testBill() billing.Bill {
	lines := []billing.BillLineItem{
		lineFor("Brake pads", "8708", 2, 2500, 14, 14),
		lineFor("Oil filter", "8409", 4, 750, 14, 14),
	}
	totals, _ := billing.Aggregate(lines)
	return billing.Bill{
		ID:              1,
		BillNumber:      "BILL-2608-0042",
		BillDate:        time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		PartyName:       "Sri Venkateswara Motors",
		PartyAddress:    "Autonagar, Vijayawada",
		PartyGSTIN:      "37ABCDE1234F1Z5",
		PartyPhone:      "9876543210",
		PlaceOfSupply:   "Andhra Pradesh",
		Subtotal:        totals.Subtotal,
		CGSTAmount:      totals.CGSTAmount,
		SGSTAmount:      totals.SGSTAmount,
		TotalAmount:     totals.Total,
		RemainingAmount: 4240,
		Lines:           lines,
	}
}

func lineFor(desc, hsn string, qty, rate, cgstRate, sgstRate float64) billing.BillLineItem {
	a := billing.ComputeLine(qty, rate, cgstRate, sgstRate)
	return billing.BillLineItem{
		Description:  desc,
		HSNCode:      hsn,
		Quantity:     qty,
		Unit:         billing.UnitPiece,
		Rate:         rate,
		TaxableValue: a.TaxableValue,
		CGSTRate:     cgstRate,
		SGSTRate:     sgstRate,
		CGSTAmount:   a.CGSTAmount,
		SGSTAmount:   a.SGSTAmount,
		TotalAmount:  a.TotalAmount,
	}
}

func TestBuildLayout(t *testing.T) {
	l := BuildLayout(testBill(), testCompany)

	require.Equal(t, "TAX INVOICE", l.Title)
	require.Equal(t, testCompany, l.Company)

	require.Len(t, l.Meta, 3)
	require.Equal(t, "BILL-2608-0042", l.Meta[0].Value)
	require.Equal(t, "20-08-2026", l.Meta[1].Value)
	require.Equal(t, "Andhra Pradesh", l.Meta[2].Value)

	require.Equal(t, []string{
		"Sri Venkateswara Motors",
		"Autonagar, Vijayawada",
		"GSTIN: 37ABCDE1234F1Z5",
		"Phone: 9876543210",
	}, l.BillTo)

	require.Equal(t, []string{
		"Description", "HSN/SAC", "Qty", "Unit", "Rate",
		"Taxable Value", "CGST", "SGST", "Total",
	}, l.Columns)
	require.Contains(t, l.Columns, "Taxable Value")
	require.Len(t, l.Rows, 2)
	require.Equal(t, "Brake pads", l.Rows[0].Description)
	require.Equal(t, "2", l.Rows[0].Quantity)
	require.Equal(t, "₹2,500.00", l.Rows[0].Rate)
	require.Equal(t, "₹5,000.00", l.Rows[0].TaxableValue)
	require.Equal(t, "₹6,400.00", l.Rows[0].Amount)
}

func TestBuildLayoutOmitsEmptyPartyFields(t *testing.T) {
	bill := testBill()
	bill.PartyAddress = ""
	bill.PartyGSTIN = ""
	bill.PartyPhone = ""
	bill.PlaceOfSupply = ""

	l := BuildLayout(bill, testCompany)
	require.Equal(t, []string{"Sri Venkateswara Motors"}, l.BillTo)
	require.Len(t, l.Meta, 2)
}

func TestBuildLayoutSummary(t *testing.T) {
	l := BuildLayout(testBill(), testCompany)

	require.Len(t, l.Summary, 6)
	require.Equal(t, "Subtotal", l.Summary[0].Label)
	require.Equal(t, "₹8,000.00", l.Summary[0].Value)
	require.Equal(t, "₹1,120.00", l.Summary[1].Value)
	require.Equal(t, "Total Tax @ 28%", l.Summary[3].Label)
	require.Equal(t, "₹2,240.00", l.Summary[3].Value)
	require.True(t, l.Summary[4].Bold)
	require.Equal(t, "₹10,240.00", l.Summary[4].Value)
	require.Equal(t, "Remaining", l.Summary[5].Label)
	require.Equal(t, "₹4,240.00", l.Summary[5].Value)
}

func TestBuildLayoutHSNRows(t *testing.T) {
	l := BuildLayout(testBill(), testCompany)

	require.Len(t, l.HSNRows, 3)
	require.Equal(t, "8708", l.HSNRows[0].Code)
	require.Equal(t, "₹5,000.00", l.HSNRows[0].Taxable)
	require.Equal(t, "₹1,400.00", l.HSNRows[0].Tax)
	require.Equal(t, "Total", l.HSNRows[2].Code)
	require.Equal(t, "₹8,000.00", l.HSNRows[2].Taxable)
	require.Equal(t, "₹2,240.00", l.HSNRows[2].Tax)
}

func TestFormatAmountIndianGrouping(t *testing.T) {
	require.Equal(t, "₹1,00,000.00", FormatAmount(100000))
	require.Equal(t, "₹6,400.00", FormatAmount(6400))
	require.Equal(t, "₹0.00", FormatAmount(0))
	require.Equal(t, "₹2.51", FormatAmount(2.51))
}

func TestFormatQuantity(t *testing.T) {
	require.Equal(t, "2", FormatQuantity(2))
	require.Equal(t, "1.5", FormatQuantity(1.5))
}
