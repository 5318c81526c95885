package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mimasafoods/storefront/internal/checkout"
	"github.com/mimasafoods/storefront/internal/order"
	"github.com/mimasafoods/storefront/internal/payment"
)

// CheckoutService is the orchestrator surface the handlers need.
type CheckoutService interface {
	Begin(ctx context.Context, sessionID string, customer checkout.Customer) (*checkout.BeginResult, error)
	Cancel(ctx context.Context, sessionID string) error
	Complete(ctx context.Context, sessionID string, req checkout.VerifyRequest) (*order.Order, error)
}

type CheckoutHandler struct {
	oc     CheckoutService
	logger *log.Logger
}

func NewCheckoutHandler(oc CheckoutService, logger *log.Logger) *CheckoutHandler {
	return &CheckoutHandler{oc: oc, logger: logger}
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		writeError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}

	var customer checkout.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.oc.Begin(ctx, session, customer)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		writeError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.oc.Cancel(ctx, session); err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) Verify(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		writeError(w, http.StatusBadRequest, "missing X-Session-ID header")
		return
	}

	var req checkout.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Verification talks to the gateway and may retry the order commit.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	o, err := h.oc.Complete(ctx, session, req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		writeError(w, http.StatusConflict, "checkout already in progress")
	case errors.Is(err, checkout.ErrNoActiveCheckout):
		writeError(w, http.StatusConflict, "no active checkout for session")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable, try again")
	case errors.Is(err, payment.ErrVerificationFailed):
		writeError(w, http.StatusPaymentRequired, "payment could not be verified")
	default:
		h.logger.Printf("checkout error: %v", err)
		writeError(w, http.StatusInternalServerError, "checkout failed")
	}
}
