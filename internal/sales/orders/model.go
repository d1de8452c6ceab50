package orders

import "time"

type OrderStatus string

const (
	StatusPicking    OrderStatus = "picking"
	StatusReady      OrderStatus = "ready"
	StatusDispatched OrderStatus = "dispatched"
	StatusCompleted  OrderStatus = "completed"
)

var statusRank = map[OrderStatus]int{
	StatusPicking:    0,
	StatusReady:      1,
	StatusDispatched: 2,
	StatusCompleted:  3,
}

// ValidStatus reports whether s is a recognised order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether an order may move from one status to
// another. Only forward moves are allowed; skipping intermediate stages is
// permitted so a counter sale can jump straight to dispatched.
func CanTransition(from, to OrderStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ActiveOrder is a confirmed sale being picked, packed and dispatched.
type ActiveOrder struct {
	ID              int64       `json:"id" db:"id"`
	OrderNumber     string      `json:"order_number" db:"order_number"`
	QuotationID     *int64      `json:"quotation_id,omitempty" db:"quotation_id"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	CustomerPhone   string      `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string      `json:"customer_address" db:"customer_address"`
	Status          OrderStatus `json:"status" db:"status"`
	TotalAmount     float64     `json:"total_amount" db:"total_amount"`
	Notes           string      `json:"notes,omitempty" db:"notes"`
	CreatedBy       int64       `json:"created_by" db:"created_by"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
	Items           []OrderItem `json:"items,omitempty" db:"-"`
}

// PickedCount returns how many items have been picked.
func (o ActiveOrder) PickedCount() int {
	count := 0
	for _, item := range o.Items {
		if item.IsPicked {
			count++
		}
	}
	return count
}

// FullyPicked reports whether every item has been picked.
func (o ActiveOrder) FullyPicked() bool {
	return len(o.Items) > 0 && o.PickedCount() == len(o.Items)
}

// OrderItem is one part to pick. The pick state records who ticked it off
// and when, so a disputed shortage can be traced.
type OrderItem struct {
	ID        int64      `json:"id" db:"id"`
	OrderID   int64      `json:"order_id" db:"order_id"`
	ProductID *int64     `json:"product_id,omitempty" db:"product_id"`
	Name      string     `json:"name" db:"name"`
	Quantity  int        `json:"quantity" db:"quantity"`
	Price     float64    `json:"price" db:"price"`
	IsPicked  bool       `json:"is_picked" db:"is_picked"`
	PickedBy  *int64     `json:"picked_by,omitempty" db:"picked_by"`
	PickedAt  *time.Time `json:"picked_at,omitempty" db:"picked_at"`
	LineOrder int        `json:"line_order" db:"line_order"`
}
