package ticketing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"backstage/entity"
	"backstage/metrics"
)

// PurchaseTickets validates the request, reserves capacity, issues the tickets, refreshes the
// buyer's access and settles payment, all in one unit of work.
func (s *Service) PurchaseTickets(ctx context.Context, request entity.PurchaseRequest) (entity.PurchaseResult, error) {
	// fixed for every attempt of the unit of work: the processor deduplicates checkout sessions
	// by purchase id and must see the same ticket ids each time
	purchaseID := uuid.New()
	issuedAt := s.now().UTC()
	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"purchase_id": purchaseID.String(),
		"user_id":     request.UserID,
		"event_id":    request.EventID,
		"ticket_type": request.TicketType,
		"quantity":    request.Quantity,
	})

	var result entity.PurchaseResult
	var settlement Settlement
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, settlement, err = s.purchase(ctx, uow, purchaseID, issuedAt, request)
		return err
	})
	if err != nil {
		metrics.PurchasesRejected.WithLabelValues(string(entity.AsError(err).Code)).Inc()
		return entity.PurchaseResult{}, err
	}

	metrics.TicketsIssued.WithLabelValues(string(request.TicketType)).Add(float64(len(result.Tickets)))
	for _, payment := range settlement.Payments {
		if payment.Status != entity.PaymentStatusPending {
			metrics.PaymentsSettled.WithLabelValues(payment.Strategy, string(payment.Status)).Inc()
		}
	}
	logger.WithField("total", result.TotalPrice.String()).Info("Tickets purchased")

	return result, nil
}

func (s *Service) purchase(
	ctx context.Context,
	uow UnitOfWork,
	purchaseID uuid.UUID,
	issuedAt time.Time,
	request entity.PurchaseRequest,
) (entity.PurchaseResult, Settlement, error) {
	user, err := uow.UserByID(ctx, request.UserID)
	if err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	cmd, err := entity.ValidatePurchase(user, request, s.catalog)
	if err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	event, err := uow.EventByID(ctx, cmd.EventID)
	if err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}
	if event.Status != entity.EventStatusUpcoming {
		return entity.PurchaseResult{}, Settlement{}, entity.ErrEventNotPurchasable.WithMessage("event %s is %s", event.EventID, event.Status)
	}

	unitPrice, err := s.catalog.ForEvent(event).UnitPrice(cmd.TicketType)
	if err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	if err := uow.ReserveCapacity(ctx, event.EventID, cmd.Quantity); err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	tickets := issueTickets(purchaseID, cmd, unitPrice, issuedAt)
	if err := uow.AddTickets(ctx, tickets); err != nil {
		return entity.PurchaseResult{}, Settlement{}, fmt.Errorf("could not add tickets: %w", err)
	}

	if _, err := recomputeAccess(ctx, uow, user.UserID); err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	total := unitPrice.Times(cmd.Quantity)
	settlement, err := s.payments.Settle(ctx, uow, SettlementRequest{
		PurchaseID: purchaseID.String(),
		EventID:    event.EventID,
		Tickets:    tickets,
		Total:      total,
	})
	if err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	for _, ticket := range tickets {
		err := uow.Publish(ctx, entity.TicketIssued_v1{
			Header:       entity.NewEventHeaderWithIdempotencyKey(ticket.TicketID),
			TicketID:     ticket.TicketID,
			TicketNumber: ticket.TicketNumber,
			TicketType:   ticket.Type,
			EventID:      ticket.EventID,
			OwnerID:      ticket.OwnerID,
			OwnerEmail:   user.Email,
			Price:        ticket.Price,
			Access:       ticket.Access,
		})
		if err != nil {
			return entity.PurchaseResult{}, Settlement{}, fmt.Errorf("could not publish TicketIssued_v1: %w", err)
		}
	}

	if err := publishSettledPayments(ctx, uow, settlement.Payments); err != nil {
		return entity.PurchaseResult{}, Settlement{}, err
	}

	return entity.PurchaseResult{
		Tickets:     tickets,
		TotalPrice:  total,
		CheckoutURL: settlement.CheckoutURL,
		SessionID:   settlement.SessionID,
	}, settlement, nil
}

// issueTickets derives ticket ids from the purchase id, so a retried unit of work issues the
// same tickets.
func issueTickets(purchaseID uuid.UUID, cmd entity.PurchaseCommand, unitPrice entity.Money, now time.Time) []entity.Ticket {
	access := entity.AccessFlagsFor(cmd.TicketType)

	return lo.Times(cmd.Quantity, func(i int) entity.Ticket {
		return entity.Ticket{
			TicketID:     uuid.NewSHA1(purchaseID, []byte(strconv.Itoa(i))).String(),
			TicketNumber: entity.NewTicketNumber(cmd.EventID, now),
			Type:         cmd.TicketType,
			Price:        unitPrice,
			Status:       entity.TicketStatusActive,
			Access:       access,
			OwnerID:      cmd.User.UserID,
			EventID:      cmd.EventID,
			PurchaseDate: now,
		}
	})
}

func publishSettledPayments(ctx context.Context, uow UnitOfWork, payments []entity.Payment) error {
	for _, payment := range payments {
		if payment.Status == entity.PaymentStatusPending {
			continue
		}

		err := uow.Publish(ctx, entity.PaymentSettled_v1{
			Header:    entity.NewEventHeaderWithIdempotencyKey(payment.PaymentID),
			PaymentID: payment.PaymentID,
			TicketID:  payment.TicketID,
			Status:    payment.Status,
			Amount:    payment.Amount,
			Strategy:  payment.Strategy,
		})
		if err != nil {
			return fmt.Errorf("could not publish PaymentSettled_v1: %w", err)
		}
	}

	return nil
}
