package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"backstage/entity"
)

func (h Handler) IssueReceiptHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"IssueReceiptHandler",
		func(ctx context.Context, event *entity.PaymentSettled_v1) error {
			if event.Status != entity.PaymentStatusCompleted {
				return nil
			}

			log.FromContext(ctx).WithField("payment_id", event.PaymentID).Info("Issuing receipt")

			_, err := h.receiptsService.IssueReceipt(ctx, entity.IssueReceiptRequest{
				TicketID:       event.TicketID,
				Price:          event.Amount,
				IdempotencyKey: event.PaymentID,
			})
			if err != nil {
				return fmt.Errorf("failed to issue receipt: %w", err)
			}

			return nil
		},
	)
}
