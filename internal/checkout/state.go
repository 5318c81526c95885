package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// State tracks where a checkout attempt is in its lifecycle. An attempt
// moves strictly forward; any failure ends it.
type State string

const (
	StateAwaitingGatewayOrder State = "awaiting_gateway_order"
	StateAwaitingUserPayment  State = "awaiting_user_payment"
	StateVerifyingPayment     State = "verifying_payment"
	StatePersistingOrder      State = "persisting_order"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

// Customer is the buyer's delivery details captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	PinCode string `json:"pinCode"`
}

// Line is one cart row frozen at Begin. The order is later built from
// these lines, never from the live cart, so edits made in another tab
// while the payment widget is open cannot desync items and totals.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Attempt is the in-flight checkout for one session. It lives in the
// attempt store from Begin until the order is committed, cancelled, or
// fails, and pins the lines and the amount the gateway order was
// created for.
type Attempt struct {
	SessionID         string          `json:"sessionId"`
	State             State           `json:"state"`
	Customer          Customer        `json:"customer"`
	MerchantReference string          `json:"merchantReference"`
	GatewayOrderID    string          `json:"gatewayOrderId"`
	Lines             []Line          `json:"lines"`
	AmountPaise       int64           `json:"amountPaise"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCharge    decimal.Decimal `json:"shippingCharge"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	StartedAt         time.Time       `json:"startedAt"`
}
