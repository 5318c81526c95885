package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mimasafoods/storefront/internal/cart"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/payment"
	"github.com/mimasafoods/storefront/internal/pricing"
)

// Gateway creates payment orders with the external provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.GatewayOrder, error)
}

// Verifier proves a reported payment is genuine and captured.
type Verifier interface {
	Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error
}

// Notifier delivers order confirmations. Failures must not affect the order.
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *order.Order) error
}

// BeginResult is what the browser needs to open the payment widget.
type BeginResult struct {
	GatewayOrderID    string `json:"gatewayOrderId"`
	MerchantReference string `json:"merchantReference"`
	AmountPaise       int64  `json:"amountPaise"`
	Currency          string `json:"currency"`
}

// VerifyRequest is the gateway callback relayed by the browser after the
// user finishes paying.
type VerifyRequest struct {
	GatewayOrderID   string `json:"razorpayOrderId"`
	GatewayPaymentID string `json:"razorpayPaymentId"`
	Signature        string `json:"razorpaySignature"`
}

// Orchestrator drives a checkout attempt from cart to committed order:
// validate, price, create the gateway order, verify the payment, persist.
// The attempt store serializes attempts per session.
type Orchestrator struct {
	carts    cart.Repository
	resolver *pricing.Resolver
	gateway  Gateway
	verifier Verifier
	orders   order.Repository
	numbers  *order.NumberGenerator
	attempts AttemptStore
	notifier Notifier
	logger   *log.Logger

	commitRetries int
	commitBackoff time.Duration
}

func NewOrchestrator(
	carts cart.Repository,
	resolver *pricing.Resolver,
	gateway Gateway,
	verifier Verifier,
	orders order.Repository,
	numbers *order.NumberGenerator,
	attempts AttemptStore,
	notifier Notifier,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		carts:         carts,
		resolver:      resolver,
		gateway:       gateway,
		verifier:      verifier,
		orders:        orders,
		numbers:       numbers,
		attempts:      attempts,
		notifier:      notifier,
		logger:        logger,
		commitRetries: 3,
		commitBackoff: 200 * time.Millisecond,
	}
}

// Begin validates the customer and cart, registers the amount with the
// gateway, and records the attempt. The cart stays untouched.
func (oc *Orchestrator) Begin(ctx context.Context, sessionID string, customer Customer) (*BeginResult, error) {
	if verr := validateCustomer(customer); verr != nil {
		return nil, verr
	}

	items, err := oc.carts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"cart": "cart is empty"}}
	}

	totals := oc.resolver.ComputeTotals(ctx, items)
	if len(totals.MissingProducts) > 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"cart": fmt.Sprintf("%d item(s) are no longer available, remove them to continue", len(totals.MissingProducts)),
		}}
	}

	attempt := &Attempt{
		SessionID:         sessionID,
		State:             StateAwaitingGatewayOrder,
		Customer:          customer,
		MerchantReference: uuid.NewString(),
		Lines:             snapshotLines(items),
		AmountPaise:       pricing.PaiseAmount(totals.Total),
		Subtotal:          totals.Subtotal,
		ShippingCharge:    totals.ShippingCharge,
		TotalAmount:       totals.Total,
		StartedAt:         time.Now(),
	}

	ok, err := oc.attempts.Begin(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}
	if !ok {
		return nil, ErrCheckoutInFlight
	}

	gwOrder, err := oc.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		AmountPaise: attempt.AmountPaise,
		Currency:    "INR",
		Receipt:     attempt.MerchantReference,
		Notes:       map[string]string{"session_id": sessionID},
	})
	if err != nil {
		// Unlock the session so the user can retry.
		if derr := oc.attempts.Delete(ctx, sessionID); derr != nil {
			oc.logger.Printf("release attempt for %s: %v", sessionID, derr)
		}
		return nil, err
	}

	attempt.State = StateAwaitingUserPayment
	attempt.GatewayOrderID = gwOrder.ID
	if err := oc.attempts.Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}

	oc.logger.Printf("checkout started session=%s gateway_order=%s amount_paise=%d",
		sessionID, gwOrder.ID, attempt.AmountPaise)

	return &BeginResult{
		GatewayOrderID:    gwOrder.ID,
		MerchantReference: attempt.MerchantReference,
		AmountPaise:       attempt.AmountPaise,
		Currency:          gwOrder.Currency,
	}, nil
}

// Cancel abandons the session's attempt. The cart is left intact and the
// session may begin again immediately.
func (oc *Orchestrator) Cancel(ctx context.Context, sessionID string) error {
	a, err := oc.attempts.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNoActiveCheckout
	}
	oc.logger.Printf("checkout cancelled session=%s gateway_order=%s", sessionID, a.GatewayOrderID)
	return oc.attempts.Delete(ctx, sessionID)
}

// Complete verifies the reported payment and commits the order. On success
// the cart is cleared in the same transaction that writes the order. Replays
// for an already-committed payment return the existing order.
func (oc *Orchestrator) Complete(ctx context.Context, sessionID string, req VerifyRequest) (*order.Order, error) {
	// A repeated callback after a successful commit must not create a
	// second order.
	if existing, err := oc.orders.FindByPaymentID(ctx, req.GatewayPaymentID); err != nil {
		return nil, fmt.Errorf("lookup payment: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	attempt, err := oc.attempts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNoActiveCheckout
	}
	if attempt.GatewayOrderID != req.GatewayOrderID {
		return nil, fmt.Errorf("%w: gateway order mismatch", payment.ErrVerificationFailed)
	}

	attempt.State = StateVerifyingPayment
	if err := oc.attempts.Update(ctx, attempt); err != nil {
		oc.logger.Printf("update attempt for %s: %v", sessionID, err)
	}

	if err := oc.verifier.Verify(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		// The cart survives so the user can retry with a fresh attempt.
		if derr := oc.attempts.Delete(ctx, sessionID); derr != nil {
			oc.logger.Printf("release attempt for %s: %v", sessionID, derr)
		}
		oc.logger.Printf("verification failed session=%s payment=%s: %v",
			sessionID, req.GatewayPaymentID, err)
		return nil, err
	}

	attempt.State = StatePersistingOrder
	if err := oc.attempts.Update(ctx, attempt); err != nil {
		oc.logger.Printf("update attempt for %s: %v", sessionID, err)
	}

	o, err := oc.buildOrder(ctx, attempt, req)
	if err != nil {
		return nil, err
	}

	if err := oc.commitOrder(ctx, o, sessionID, req.GatewayPaymentID); err != nil {
		return nil, err
	}

	if err := oc.attempts.Delete(ctx, sessionID); err != nil {
		oc.logger.Printf("release attempt for %s: %v", sessionID, err)
	}

	oc.logger.Printf("order committed session=%s number=%s payment=%s",
		sessionID, o.OrderNumber, req.GatewayPaymentID)

	go oc.notify(o)

	return o, nil
}

// snapshotLines freezes the priced cart rows. Begin rejects carts with
// unresolved products, so every item here has a product attached.
func snapshotLines(items []cart.Item) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		lines = append(lines, Line{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return lines
}

func (oc *Orchestrator) buildOrder(ctx context.Context, attempt *Attempt, req VerifyRequest) (*order.Order, error) {
	o := &order.Order{
		CustomerName:      attempt.Customer.Name,
		CustomerEmail:     attempt.Customer.Email,
		CustomerPhone:     attempt.Customer.Phone,
		ShippingAddress:   attempt.Customer.Address,
		PinCode:           attempt.Customer.PinCode,
		Subtotal:          attempt.Subtotal,
		ShippingCharge:    attempt.ShippingCharge,
		TotalAmount:       attempt.TotalAmount,
		Status:            order.StatusPaid,
		MerchantReference: attempt.MerchantReference,
		GatewayOrderID:    req.GatewayOrderID,
		GatewayPaymentID:  req.GatewayPaymentID,
		GatewaySignature:  req.Signature,
		PaymentStatus:     "captured",
	}

	for _, line := range attempt.Lines {
		o.Items = append(o.Items, order.Item{
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			ProductPrice: line.Price,
			Quantity:     line.Quantity,
			Subtotal:     line.Subtotal,
		})
	}

	number, err := oc.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}
	o.OrderNumber = number

	return o, nil
}

// commitOrder retries transient persistence failures. The payment is already
// captured at this point, so giving up is logged loudly enough for manual
// reconciliation.
func (oc *Orchestrator) commitOrder(ctx context.Context, o *order.Order, sessionID, paymentID string) error {
	var lastErr error
	for i := 0; i < oc.commitRetries; i++ {
		if i > 0 {
			time.Sleep(oc.commitBackoff)
		}

		err := oc.orders.CreateWithItems(ctx, o, sessionID)
		if err == nil {
			return nil
		}
		if order.IsDuplicatePayment(err) {
			existing, ferr := oc.orders.FindByPaymentID(ctx, paymentID)
			if ferr == nil && existing != nil {
				*o = *existing
				return nil
			}
			lastErr = err
			continue
		}
		lastErr = err
		oc.logger.Printf("order commit attempt %d failed session=%s: %v", i+1, sessionID, err)
	}

	oc.logger.Printf("RECONCILE: captured payment without order payment=%s merchant_ref=%s session=%s amount=%s: %v",
		paymentID, o.MerchantReference, sessionID, o.TotalAmount, lastErr)
	return fmt.Errorf("persist order: %w", lastErr)
}

func (oc *Orchestrator) notify(o *order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := oc.notifier.OrderConfirmed(ctx, o); err != nil {
		oc.logger.Printf("order confirmation for %s failed: %v", o.OrderNumber, err)
	}
}
