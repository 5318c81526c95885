package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrVerificationFailed means the payment could not be proven genuine. Any
// doubt, including a gateway outage during the status check, resolves to
// this error rather than accepting the payment.
var ErrVerificationFailed = errors.New("payment verification failed")

// Verifier proves a callback from the browser really corresponds to a
// captured payment. Two independent checks: the HMAC signature over
// "<order_id>|<payment_id>" keyed with the API secret, and the payment's
// status fetched directly from the gateway.
type Verifier struct {
	secret string
	client *Client
}

func NewVerifier(secret string, client *Client) *Verifier {
	return &Verifier{secret: secret, client: client}
}

func (v *Verifier) Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) error {
	// Without a secret every HMAC is forgeable, so nothing can be proven.
	if v.secret == "" {
		return fmt.Errorf("%w: no signing secret configured", ErrVerificationFailed)
	}
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return ErrVerificationFailed
	}

	if !v.signatureValid(gatewayOrderID, gatewayPaymentID, signature) {
		return fmt.Errorf("%w: signature mismatch", ErrVerificationFailed)
	}

	p, err := v.client.FetchPayment(ctx, gatewayPaymentID)
	if err != nil {
		return fmt.Errorf("%w: status check: %v", ErrVerificationFailed, err)
	}
	if p.Status != "captured" {
		return fmt.Errorf("%w: payment status %q", ErrVerificationFailed, p.Status)
	}
	if p.OrderID != gatewayOrderID {
		return fmt.Errorf("%w: payment belongs to order %q", ErrVerificationFailed, p.OrderID)
	}

	return nil
}

func (v *Verifier) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(v.secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
