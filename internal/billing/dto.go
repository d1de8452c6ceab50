package billing

import "time"

type CreateBillLineReq struct {
	Description string   `json:"description" validate:"required"`
	HSNCode     string   `json:"hsn_code" validate:"required"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	Unit        Unit     `json:"unit" validate:"required,oneof=piece kg set box"`
	Rate        float64  `json:"rate" validate:"required,gt=0"`
	CGSTRate    *float64 `json:"cgst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	SGSTRate    *float64 `json:"sgst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type CreateBillRequest struct {
	BillDate      time.Time           `json:"bill_date" validate:"required"`
	PartyName     string              `json:"party_name" validate:"required"`
	PartyAddress  string              `json:"party_address"`
	PartyGSTIN    string              `json:"party_gstin" validate:"omitempty,gstin"`
	PartyPhone    string              `json:"party_phone" validate:"omitempty,inphone"`
	PlaceOfSupply string              `json:"place_of_supply"`
	Lines         []CreateBillLineReq `json:"lines" validate:"required,min=1,dive"`
}

type RecordPaymentRequest struct {
	Amount float64       `json:"amount" validate:"required,gt=0"`
	Method PaymentMethod `json:"method" validate:"required,oneof=cash upi bank_transfer cheque card"`
	PaidOn time.Time     `json:"paid_on"`
	Note   string        `json:"note"`
}

type ListBillsRequest struct {
	PartyName *string    `json:"party_name,omitempty"`
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	Unpaid    bool       `json:"unpaid"`
	Limit     int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int        `json:"offset" validate:"gte=0"`
}
