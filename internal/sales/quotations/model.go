package quotations

import "time"

type QuotationStatus string

const (
	StatusPending  QuotationStatus = "pending"
	StatusAccepted QuotationStatus = "accepted"
	StatusDeclined QuotationStatus = "declined"
)

// Terminal reports whether the status permits no further transition.
func Terminal(s QuotationStatus) bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Quotation is a priced offer to a customer. It starts pending and ends
// accepted or declined; acceptance spawns exactly one active order.
type Quotation struct {
	ID              int64           `json:"id" db:"id"`
	QuotationNumber string          `json:"quotation_number" db:"quotation_number"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string          `json:"customer_address" db:"customer_address"`
	Vehicle         string          `json:"vehicle,omitempty" db:"vehicle"`
	Status          QuotationStatus `json:"status" db:"status"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	OrderID         *int64          `json:"order_id,omitempty" db:"order_id"`
	DeclineReason   string          `json:"decline_reason,omitempty" db:"decline_reason"`
	CreatedBy       int64           `json:"created_by" db:"created_by"`
	ResolvedBy      *int64          `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Items           []QuotationItem `json:"items,omitempty" db:"-"`
}

// QuotationItem is one offered part. ProductID is optional so ad-hoc items
// not in the catalog can still be quoted.
type QuotationItem struct {
	ID          int64   `json:"id" db:"id"`
	QuotationID int64   `json:"quotation_id" db:"quotation_id"`
	ProductID   *int64  `json:"product_id,omitempty" db:"product_id"`
	Name        string  `json:"name" db:"name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
	LineOrder   int     `json:"line_order" db:"line_order"`
}
