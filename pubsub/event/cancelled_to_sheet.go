package event

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"backstage/entity"
)

const CancelledTicketsSheet = "tickets-cancelled"

func (h Handler) AppendCancelledTicketHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"AppendCancelledTicketHandler",
		func(ctx context.Context, event *entity.TicketCancelled_v1) error {
			log.FromContext(ctx).Info("Adding cancelled ticket to sheet")
			return h.spreadsheetsService.AppendRow(
				ctx,
				CancelledTicketsSheet,
				[]string{
					event.TicketID,
					event.TicketNumber,
					event.EventID,
					event.OwnerID,
					event.CancelledBy,
					event.Price.Amount.StringFixed(2),
					event.Price.Currency,
				},
			)
		},
	)
}
