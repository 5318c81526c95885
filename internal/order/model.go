package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Order captures a completed checkout. Item names and prices are frozen at
// purchase time so later catalog edits never rewrite history.
type Order struct {
	ID              string          `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	PinCode         string          `json:"pinCode"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`

	MerchantReference string `json:"-"`
	GatewayOrderID    string `json:"-"`
	GatewayPaymentID  string `json:"-"`
	GatewaySignature  string `json:"-"`
	PaymentStatus     string `json:"paymentStatus"`

	CreatedAt time.Time `json:"createdAt"`
}
