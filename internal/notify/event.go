package notify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mimasafoods/storefront/internal/order"
)

const OrderConfirmedQueue = "order.confirmed"

type OrderItem struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderConfirmed is the message published after an order commits. It carries
// everything the mail template needs so the consumer never reads the
// database.
type OrderConfirmed struct {
	EventType       string          `json:"eventType"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	PinCode         string          `json:"pinCode"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCharge  decimal.Decimal `json:"shippingCharge"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Timestamp       time.Time       `json:"timestamp"`
}

func NewOrderConfirmed(o *order.Order) OrderConfirmed {
	ev := OrderConfirmed{
		EventType:       "OrderConfirmed",
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		PinCode:         o.PinCode,
		Subtotal:        o.Subtotal,
		ShippingCharge:  o.ShippingCharge,
		TotalAmount:     o.TotalAmount,
		Timestamp:       time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.ProductPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return ev
}
