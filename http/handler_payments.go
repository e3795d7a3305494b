package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backstage/entity"
)

type postPaymentSettlementRequest struct {
	TicketID string                `json:"ticket_id"`
	Outcome  entity.PaymentOutcome `json:"outcome"`
}

func (s Server) PostPaymentSettlement(c echo.Context) error {
	var request postPaymentSettlementRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.TicketID == "" {
		return entity.ErrValidation.WithMessage("ticket_id is required")
	}

	if err := s.service.SettlePayment(c.Request().Context(), request.TicketID, request.Outcome); err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}
