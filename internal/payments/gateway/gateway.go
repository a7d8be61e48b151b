// Package gateway integrates with the external payment processor. The core
// supplies an amount, currency, description, and a correlation identifier;
// the processor answers with a checkout URL. Failures are non-fatal: the
// reservation and its payment keep their prior state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type CheckoutRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	CorrelationID string `json:"correlation_id"`
}

type CheckoutSession struct {
	CheckoutURL   string `json:"checkout_url"`
	CorrelationID string `json:"correlation_id"`
}

// Gateway initiates a payment capture with the external processor.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// HTTPGateway posts checkout requests to a configured endpoint.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

func NewHTTPGateway(endpoint string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if g.endpoint == "" {
		return CheckoutSession{}, fmt.Errorf("payment gateway is not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return CheckoutSession{}, fmt.Errorf("payment gateway rejected checkout: status %d: %s", resp.StatusCode, payload)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode checkout response: %w", err)
	}
	if session.CorrelationID == "" {
		session.CorrelationID = req.CorrelationID
	}
	return session, nil
}
