package ticketing

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"backstage/entity"
	"backstage/metrics"
)

const paymentProcessorActor = "payment-processor"

// SettlePayment applies an out-of-band processor confirmation to the ticket's pending payment.
// The asynchronous strategy records that payment as PENDING at purchase time instead of leaving
// it absent until now, so every ticket always has exactly one payment row.
// A failed payment cancels the ticket. Re-delivery of an already applied outcome is a no-op.
func (s *Service) SettlePayment(ctx context.Context, ticketID string, outcome entity.PaymentOutcome) error {
	if !outcome.Valid() {
		return entity.ErrValidation.WithMessage("unknown payment outcome %q", outcome)
	}

	var settled entity.Payment
	var applied bool
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		applied = false

		payment, err := uow.PaymentByTicketID(ctx, ticketID)
		if err != nil {
			return err
		}
		if payment.Status == outcome.Status() {
			return nil
		}

		settled, err = payment.Settle(outcome, s.now().UTC())
		if err != nil {
			return err
		}

		if err := uow.UpdatePayment(ctx, settled); err != nil {
			return fmt.Errorf("could not update payment %s: %w", settled.PaymentID, err)
		}

		if settled.Status == entity.PaymentStatusFailed {
			ticket, err := uow.TicketByID(ctx, ticketID)
			if err != nil {
				return err
			}
			if ticket.Active() {
				if err := cancelTicket(ctx, uow, ticket, paymentProcessorActor); err != nil {
					return err
				}
			}
		}

		if err := publishSettledPayments(ctx, uow, []entity.Payment{settled}); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"ticket_id": ticketID,
		"outcome":   outcome,
	})
	if !applied {
		logger.Info("Payment settlement already applied")
		return nil
	}

	metrics.PaymentsSettled.WithLabelValues(settled.Strategy, string(settled.Status)).Inc()
	logger.WithField("payment_id", settled.PaymentID).Info("Payment settled")

	return nil
}
