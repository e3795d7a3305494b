package ticketing

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"backstage/entity"
	"backstage/metrics"
)

func (s *Service) ListUserTickets(ctx context.Context, userID string) ([]entity.TicketView, error) {
	var tickets []entity.Ticket
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := uow.UserByID(ctx, userID); err != nil {
			return err
		}

		var err error
		tickets, err = uow.TicketsByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get tickets of %s: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(tickets, func(t entity.Ticket, _ int) entity.TicketView {
		return entity.TicketView{Ticket: t, AccessDescription: t.Access.Describe()}
	}), nil
}

// CancelTicket cancels an active ticket, gives its seat back to the event and recomputes the
// owner's access. Owners may cancel their own tickets, admins and moderators any ticket.
func (s *Service) CancelTicket(ctx context.Context, ticketID, requesterID string) error {
	err := s.transactor.InTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		requester, err := uow.UserByID(ctx, requesterID)
		if err != nil {
			return err
		}

		ticket, err := uow.TicketByID(ctx, ticketID)
		if err != nil {
			return err
		}

		if ticket.OwnerID != requester.UserID && !requester.Role.CanManageTickets() {
			return entity.ErrForbidden.WithMessage("ticket %s is not owned by %s", ticketID, requesterID)
		}

		return cancelTicket(ctx, uow, ticket, requester.UserID)
	})
	if err != nil {
		return err
	}

	metrics.TicketsCancelled.Inc()
	log.FromContext(ctx).WithFields(logrus.Fields{
		"ticket_id":    ticketID,
		"requester_id": requesterID,
	}).Info("Ticket cancelled")

	return nil
}

func cancelTicket(ctx context.Context, uow UnitOfWork, ticket entity.Ticket, cancelledBy string) error {
	if !ticket.Active() {
		return entity.ErrTicketNotActive.WithMessage("ticket %s is %s", ticket.TicketID, ticket.Status)
	}

	if err := uow.UpdateTicketStatus(ctx, ticket.TicketID, entity.TicketStatusCancelled); err != nil {
		return fmt.Errorf("could not cancel ticket %s: %w", ticket.TicketID, err)
	}

	if err := uow.ReleaseCapacity(ctx, ticket.EventID, 1); err != nil {
		return fmt.Errorf("could not release capacity of %s: %w", ticket.EventID, err)
	}

	if _, err := recomputeAccess(ctx, uow, ticket.OwnerID); err != nil {
		return err
	}

	err := uow.Publish(ctx, entity.TicketCancelled_v1{
		Header:       entity.NewEventHeaderWithIdempotencyKey("cancel-" + ticket.TicketID),
		TicketID:     ticket.TicketID,
		TicketNumber: ticket.TicketNumber,
		EventID:      ticket.EventID,
		OwnerID:      ticket.OwnerID,
		CancelledBy:  cancelledBy,
		Price:        ticket.Price,
	})
	if err != nil {
		return fmt.Errorf("could not publish TicketCancelled_v1: %w", err)
	}

	return nil
}
