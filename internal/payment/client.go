package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrGatewayUnavailable covers network failures and 5xx answers from the
// payment gateway. Callers treat it as retryable.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

const defaultBaseURL = "https://api.razorpay.com/v1"

type Config struct {
	KeyID     string
	KeySecret string
	// BaseURL overrides the live endpoint, used by tests.
	BaseURL string
}

// Client talks to the Razorpay orders and payments REST API using basic auth.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type CreateOrderRequest struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the gateway's record of a pending payment.
type GatewayOrder struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// Payment is the gateway's record of a payment attempt against an order.
type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount"`
	Status      string `json:"status"`
	Method      string `json:"method"`
}

// CreateOrder registers the amount with the gateway and returns the gateway
// order the browser checkout widget needs.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	if req.AmountPaise <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d paise", req.AmountPaise)
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	payload := map[string]any{
		"amount":          req.AmountPaise,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		payload["notes"] = req.Notes
	}

	var order GatewayOrder
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchPayment reads the payment's current state from the gateway.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("gateway %s %s failed: %v", method, path, err)
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		c.logger.Printf("gateway %s %s returned %d", method, path, resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("gateway %s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
