package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

type BrevoConfig struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	BCC         string
	// BaseURL overrides the live endpoint, used by tests.
	BaseURL string
}

// BrevoMailer sends transactional mail through the Brevo REST API.
type BrevoMailer struct {
	cfg  BrevoConfig
	http *http.Client
}

func NewBrevoMailer(cfg BrevoConfig) *BrevoMailer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBrevoURL
	}
	return &BrevoMailer{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Thank you for your order, {{.CustomerName}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> is confirmed.</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Item</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
  {{range .Items}}
  <tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>₹{{.Price}}</td><td>₹{{.Subtotal}}</td></tr>
  {{end}}
</table>
<p>Subtotal: ₹{{.Subtotal}}<br>
Shipping: ₹{{.ShippingCharge}}<br>
<strong>Total: ₹{{.TotalAmount}}</strong></p>
<p>Delivery to:<br>{{.ShippingAddress}}<br>PIN {{.PinCode}}<br>Phone {{.CustomerPhone}}</p>
`))

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoMessage struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	BCC         []brevoAddress `json:"bcc,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (m *BrevoMailer) SendOrderConfirmation(ctx context.Context, ev OrderConfirmed) error {
	var html bytes.Buffer
	if err := confirmationTmpl.Execute(&html, ev); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	msg := brevoMessage{
		Sender:      brevoAddress{Name: m.cfg.SenderName, Email: m.cfg.SenderEmail},
		To:          []brevoAddress{{Name: ev.CustomerName, Email: ev.CustomerEmail}},
		Subject:     fmt.Sprintf("Order %s confirmed", ev.OrderNumber),
		HTMLContent: html.String(),
	}
	if m.cfg.BCC != "" {
		msg.BCC = []brevoAddress{{Email: m.cfg.BCC}}
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.cfg.APIKey)

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("mail API status %d: %s", resp.StatusCode, body)
	}
	return nil
}
