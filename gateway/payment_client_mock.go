package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"backstage/ticketing"
)

// PaymentProcessorMock deduplicates sessions by ReferenceID like the real processor does with
// the Idempotency-Key header.
type PaymentProcessorMock struct {
	mock        sync.Mutex
	Sessions    map[string]ticketing.CheckoutRequest
	byReference map[string]ticketing.CheckoutSession
	// Err, when set, is returned instead of creating a session.
	Err error
}

func (c *PaymentProcessorMock) CreateCheckoutSession(ctx context.Context, request ticketing.CheckoutRequest) (ticketing.CheckoutSession, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Err != nil {
		return ticketing.CheckoutSession{}, c.Err
	}
	if c.Sessions == nil {
		c.Sessions = make(map[string]ticketing.CheckoutRequest)
		c.byReference = make(map[string]ticketing.CheckoutSession)
	}

	if session, ok := c.byReference[request.ReferenceID]; ok {
		return session, nil
	}

	sessionID := "cs_" + uuid.NewString()
	session := ticketing.CheckoutSession{
		SessionID:   sessionID,
		RedirectURL: "https://checkout.example.com/pay/" + sessionID,
	}
	c.Sessions[sessionID] = request
	c.byReference[request.ReferenceID] = session

	return session, nil
}

func (c *PaymentProcessorMock) Session(sessionID string) (ticketing.CheckoutRequest, bool) {
	c.mock.Lock()
	defer c.mock.Unlock()

	request, ok := c.Sessions[sessionID]
	return request, ok
}

func (c *PaymentProcessorMock) SessionsCount() int {
	c.mock.Lock()
	defer c.mock.Unlock()

	return len(c.Sessions)
}
