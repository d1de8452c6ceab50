package orders

type OrderItemReq struct {
	ProductID *int64  `json:"product_id,omitempty"`
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerName    string         `json:"customer_name" validate:"required,max=200"`
	CustomerPhone   string         `json:"customer_phone" validate:"omitempty,inphone"`
	CustomerAddress string         `json:"customer_address"`
	Notes           string         `json:"notes"`
	Items           []OrderItemReq `json:"items" validate:"required,min=1,dive"`
}

type SetStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=picking ready dispatched completed"`
}

type PickItemRequest struct {
	Picked bool `json:"picked"`
}

type ListOrdersRequest struct {
	Status   OrderStatus `json:"status,omitempty"`
	Customer string      `json:"customer,omitempty"`
	Limit    int         `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int         `json:"offset" validate:"gte=0"`
}
