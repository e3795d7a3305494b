package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"backstage/ticketing"
)

// PaymentProcessorClient creates checkout sessions at the external payment processor.
type PaymentProcessorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPaymentProcessorClient(baseURL string) PaymentProcessorClient {
	return PaymentProcessorClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type checkoutSessionRequest struct {
	ReferenceID string   `json:"reference_id"`
	EventID     string   `json:"event_id"`
	TicketIDs   []string `json:"ticket_ids"`
	Amount      string   `json:"amount"`
	Currency    string   `json:"currency"`
}

type checkoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

func (c PaymentProcessorClient) CreateCheckoutSession(ctx context.Context, request ticketing.CheckoutRequest) (ticketing.CheckoutSession, error) {
	body, err := json.Marshal(checkoutSessionRequest{
		ReferenceID: request.ReferenceID,
		EventID:     request.EventID,
		TicketIDs:   request.TicketIDs,
		Amount:      request.Total.Amount.StringFixed(2),
		Currency:    request.Total.Currency,
	})
	if err != nil {
		return ticketing.CheckoutSession{}, fmt.Errorf("could not marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return ticketing.CheckoutSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", request.ReferenceID)
	req.Header.Set("Correlation-ID", log.CorrelationIDFromContext(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ticketing.CheckoutSession{}, fmt.Errorf("could not call payment processor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return ticketing.CheckoutSession{}, fmt.Errorf("unexpected status code for POST /checkout/sessions: %d", resp.StatusCode)
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return ticketing.CheckoutSession{}, fmt.Errorf("could not decode checkout session: %w", err)
	}
	if session.SessionID == "" || session.RedirectURL == "" {
		return ticketing.CheckoutSession{}, fmt.Errorf("payment processor returned an incomplete checkout session")
	}

	return ticketing.CheckoutSession{
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
	}, nil
}
