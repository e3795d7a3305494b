package ticketing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"backstage/entity"
)

const (
	StrategySynchronousFallback = "synchronous_fallback"
	StrategyAsynchronousGateway = "asynchronous_gateway"
)

type SettlementRequest struct {
	PurchaseID string
	EventID    string
	Tickets    []entity.Ticket
	Total      entity.Money
}

type Settlement struct {
	Payments    []entity.Payment
	CheckoutURL string
	SessionID   string
}

// PaymentStrategy settles one purchase. It runs inside the purchase unit of work, so any error
// rolls back the issued tickets and the capacity reservation.
type PaymentStrategy interface {
	Name() string
	Settle(ctx context.Context, payments PaymentRepository, request SettlementRequest) (Settlement, error)
}

type CheckoutRequest struct {
	ReferenceID string
	EventID     string
	TicketIDs   []string
	Total       entity.Money
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// CheckoutProcessor is the external payment processor.
type CheckoutProcessor interface {
	CreateCheckoutSession(ctx context.Context, request CheckoutRequest) (CheckoutSession, error)
}

// NewPaymentStrategy picks the asynchronous gateway when a processor is configured and falls back
// to immediate settlement otherwise.
func NewPaymentStrategy(processor CheckoutProcessor, timeout time.Duration) PaymentStrategy {
	if processor == nil {
		return SynchronousFallback{now: time.Now}
	}
	return AsynchronousGateway{processor: processor, timeout: timeout, now: time.Now}
}

type SynchronousFallback struct {
	now func() time.Time
}

func NewSynchronousFallback() SynchronousFallback {
	return SynchronousFallback{now: time.Now}
}

func (s SynchronousFallback) Name() string {
	return StrategySynchronousFallback
}

func (s SynchronousFallback) Settle(ctx context.Context, payments PaymentRepository, request SettlementRequest) (Settlement, error) {
	now := s.now().UTC()

	created := lo.Map(request.Tickets, func(t entity.Ticket, _ int) entity.Payment {
		return entity.Payment{
			PaymentID: uuid.NewString(),
			TicketID:  t.TicketID,
			Amount:    t.Price,
			Status:    entity.PaymentStatusCompleted,
			Strategy:  StrategySynchronousFallback,
			CreatedAt: now,
			SettledAt: &now,
		}
	})

	if err := payments.AddPayments(ctx, created); err != nil {
		return Settlement{}, fmt.Errorf("could not record payments: %w", err)
	}

	return Settlement{Payments: created}, nil
}

type AsynchronousGateway struct {
	processor CheckoutProcessor
	timeout   time.Duration
	now       func() time.Time
}

func NewAsynchronousGateway(processor CheckoutProcessor, timeout time.Duration) AsynchronousGateway {
	return AsynchronousGateway{processor: processor, timeout: timeout, now: time.Now}
}

func (a AsynchronousGateway) Name() string {
	return StrategyAsynchronousGateway
}

func (a AsynchronousGateway) Settle(ctx context.Context, payments PaymentRepository, request SettlementRequest) (Settlement, error) {
	checkoutCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		checkoutCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	session, err := a.processor.CreateCheckoutSession(checkoutCtx, CheckoutRequest{
		ReferenceID: request.PurchaseID,
		EventID:     request.EventID,
		TicketIDs:   lo.Map(request.Tickets, func(t entity.Ticket, _ int) string { return t.TicketID }),
		Total:       request.Total,
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("could not create checkout session: %w", err)
	}

	now := a.now().UTC()
	pending := lo.Map(request.Tickets, func(t entity.Ticket, _ int) entity.Payment {
		return entity.Payment{
			PaymentID: uuid.NewString(),
			TicketID:  t.TicketID,
			Amount:    t.Price,
			Status:    entity.PaymentStatusPending,
			Strategy:  StrategyAsynchronousGateway,
			SessionID: session.SessionID,
			CreatedAt: now,
		}
	})

	if err := payments.AddPayments(ctx, pending); err != nil {
		return Settlement{}, fmt.Errorf("could not record pending payments: %w", err)
	}

	return Settlement{
		Payments:    pending,
		CheckoutURL: session.RedirectURL,
		SessionID:   session.SessionID,
	}, nil
}
