// Package scanning records stock and location mutations driven by QR label
// scans on the shop floor.
package scanning

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ScanAction enumerates what a scan did to the product.
type ScanAction string

const (
	ActionView     ScanAction = "view"
	ActionSold     ScanAction = "sold"
	ActionStockUp  ScanAction = "stock_up"
	ActionRelocate ScanAction = "location_change"
	ActionFlag     ScanAction = "flag"
	ActionUnflag   ScanAction = "unflag"

	// ActionCustomAdjust is accepted on requests only. The history row is
	// recorded as stock_up or sold depending on the sign of the delta.
	ActionCustomAdjust ScanAction = "custom_adjust"
)

// ValidAction reports whether a is one of the recognised scan actions.
func ValidAction(a ScanAction) bool {
	switch a {
	case ActionView, ActionSold, ActionStockUp, ActionCustomAdjust, ActionRelocate, ActionFlag, ActionUnflag:
		return true
	}
	return false
}

var (
	// ErrBadPayload indicates an unreadable or incomplete QR payload.
	ErrBadPayload = errors.New("scanning: unreadable QR payload")
	// ErrSameLocation indicates a relocation to the product's current shelf.
	ErrSameLocation = errors.New("scanning: product already at that location")
	// ErrInvalidAction indicates an unrecognised or malformed scan request.
	ErrInvalidAction = errors.New("scanning: invalid scan action")
)

// QRPayload is the JSON object embedded in a printed product label. Stock
// and location are a snapshot from print time; the database rows are
// authoritative and the snapshot is only shown for operator confirmation.
type QRPayload struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Location string `json:"location"`
	Stock    int    `json:"stock"`
}

// ParseQRPayload decodes the scanned label content. A payload must carry at
// least a product ID or a code so the product can be resolved.
func ParseQRPayload(raw string) (QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return QRPayload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.ID == 0 && p.Code == "" {
		return QRPayload{}, fmt.Errorf("%w: missing id and code", ErrBadPayload)
	}
	return p, nil
}

// ScanRecord is one append-only row of a product's scan history. OldStock
// and StockAfter bracket the mutation; a clamped sale keeps the requested
// delta in QtyChange even though StockAfter stops at zero.
type ScanRecord struct {
	ID         int64      `json:"id" db:"id"`
	ProductID  int64      `json:"product_id" db:"product_id"`
	Action     ScanAction `json:"action" db:"action"`
	QtyChange  int        `json:"qty_change" db:"qty_change"`
	OldStock   int        `json:"old_stock" db:"old_stock"`
	StockAfter int        `json:"stock_after" db:"stock_after"`
	Location   string     `json:"location" db:"location"`
	Note       string     `json:"note,omitempty" db:"note"`
	OperatorID int64      `json:"operator_id" db:"operator_id"`
	ScannedAt  time.Time  `json:"scanned_at" db:"scanned_at"`
}

// LocationMove is one append-only row of a product's location history.
type LocationMove struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	FromLocation string    `json:"from_location" db:"from_location"`
	ToLocation   string    `json:"to_location" db:"to_location"`
	OperatorID   int64     `json:"operator_id" db:"operator_id"`
	MovedAt      time.Time `json:"moved_at" db:"moved_at"`
}
