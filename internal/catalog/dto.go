package catalog

type CreateProductRequest struct {
	Code        string  `json:"code" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	HSNCode     string  `json:"hsn_code" validate:"max=10"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Location    string  `json:"location" validate:"max=100"`
}

type UpdateProductRequest struct {
	Code        string  `json:"code" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	HSNCode     string  `json:"hsn_code" validate:"max=10"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Location    string  `json:"location" validate:"max=100"`
	Flagged     bool    `json:"flagged"`
	FlagNote    string  `json:"flag_note" validate:"max=500"`
}

type ListProductsRequest struct {
	Search   string `json:"search"`
	Location string `json:"location"`
	Flagged  *bool  `json:"flagged,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
