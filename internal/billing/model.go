package billing

import "time"

// Unit enumerates the quantity units accepted on a bill line.
type Unit string

const (
	UnitPiece Unit = "piece"
	UnitKg    Unit = "kg"
	UnitSet   Unit = "set"
	UnitBox   Unit = "box"
)

// ValidUnit reports whether u is one of the accepted units.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitPiece, UnitKg, UnitSet, UnitBox:
		return true
	}
	return false
}

// PaymentMethod enumerates how a bill settlement was received.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentUPI          PaymentMethod = "upi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCard         PaymentMethod = "card"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentBankTransfer, PaymentCheque, PaymentCard:
		return true
	}
	return false
}

// BillLineItem is one product or service line on a tax invoice. All derived
// amounts are recomputed as a unit whenever quantity, rate or a tax rate
// changes; a line is never partially updated.
type BillLineItem struct {
	ID           int64   `json:"id" db:"id"`
	BillID       int64   `json:"bill_id" db:"bill_id"`
	Description  string  `json:"description" db:"description"`
	HSNCode      string  `json:"hsn_code" db:"hsn_code"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	Unit         Unit    `json:"unit" db:"unit"`
	Rate         float64 `json:"rate" db:"rate"`
	TaxableValue float64 `json:"taxable_value" db:"taxable_value"`
	CGSTRate     float64 `json:"cgst_rate" db:"cgst_rate"`
	SGSTRate     float64 `json:"sgst_rate" db:"sgst_rate"`
	CGSTAmount   float64 `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount   float64 `json:"sgst_amount" db:"sgst_amount"`
	TotalAmount  float64 `json:"total_amount" db:"total_amount"`
	LineOrder    int     `json:"line_order" db:"line_order"`
}

// Bill is an issued tax invoice. Header totals are always the exact sums of
// the constituent lines at save time; only RemainingAmount and DocumentPath
// change afterwards.
type Bill struct {
	ID              int64          `json:"id" db:"id"`
	BillNumber      string         `json:"bill_number" db:"bill_number"`
	BillDate        time.Time      `json:"bill_date" db:"bill_date"`
	PartyName       string         `json:"party_name" db:"party_name"`
	PartyAddress    string         `json:"party_address" db:"party_address"`
	PartyGSTIN      string         `json:"party_gstin" db:"party_gstin"`
	PartyPhone      string         `json:"party_phone" db:"party_phone"`
	PlaceOfSupply   string         `json:"place_of_supply" db:"place_of_supply"`
	Subtotal        float64        `json:"subtotal" db:"subtotal"`
	CGSTAmount      float64        `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount      float64        `json:"sgst_amount" db:"sgst_amount"`
	TotalAmount     float64        `json:"total_amount" db:"total_amount"`
	RemainingAmount float64        `json:"remaining_amount" db:"remaining_amount"`
	DocumentPath    *string        `json:"document_path,omitempty" db:"document_path"`
	CreatedBy       int64          `json:"created_by" db:"created_by"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	Lines           []BillLineItem `json:"lines,omitempty" db:"-"`
}

// BillPayment is a partial or full settlement against one bill.
type BillPayment struct {
	ID         int64         `json:"id" db:"id"`
	BillID     int64         `json:"bill_id" db:"bill_id"`
	Amount     float64       `json:"amount" db:"amount"`
	Method     PaymentMethod `json:"method" db:"method"`
	PaidOn     time.Time     `json:"paid_on" db:"paid_on"`
	Note       string        `json:"note,omitempty" db:"note"`
	RecordedBy int64         `json:"recorded_by" db:"recorded_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
