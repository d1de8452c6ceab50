package catalog

import "time"

// Product is one stocked part. Code is the value embedded in the printed QR
// label and is unique across the catalog.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	HSNCode     string    `json:"hsn_code,omitempty" db:"hsn_code"`
	Price       float64   `json:"price" db:"price"`
	Stock       int       `json:"stock" db:"stock"`
	Location    string    `json:"location" db:"location"`
	Flagged     bool      `json:"flagged" db:"flagged"`
	FlagNote    string    `json:"flag_note,omitempty" db:"flag_note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
