package quotations

type QuotationItemReq struct {
	ProductID *int64  `json:"product_id,omitempty"`
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type CreateQuotationRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required,max=200"`
	CustomerPhone   string             `json:"customer_phone" validate:"omitempty,inphone"`
	CustomerAddress string             `json:"customer_address"`
	Vehicle         string             `json:"vehicle" validate:"max=64"`
	Notes           string             `json:"notes"`
	Items           []QuotationItemReq `json:"items" validate:"required,min=1,dive"`
}

type DeclineQuotationRequest struct {
	Reason string `json:"reason"`
}

type ListQuotationsRequest struct {
	Status   QuotationStatus `json:"status,omitempty"`
	Customer string          `json:"customer,omitempty"`
	Limit    int             `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int             `json:"offset" validate:"gte=0"`
}
