package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"backstage/entity"
)

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func newMoneyResponse(m entity.Money) moneyResponse {
	return moneyResponse{Amount: m.Amount.StringFixed(2), Currency: m.Currency}
}

type ticketResponse struct {
	TicketID          string              `json:"ticket_id"`
	TicketNumber      string              `json:"ticket_number"`
	TicketType        entity.TicketType   `json:"ticket_type"`
	Price             moneyResponse       `json:"price"`
	Status            entity.TicketStatus `json:"status"`
	EventID           string              `json:"event_id"`
	PurchaseDate      time.Time           `json:"purchase_date"`
	Access            entity.AccessFlags  `json:"access"`
	AccessDescription string              `json:"access_description"`
	ArtifactRef       string              `json:"artifact_ref,omitempty"`
}

func newTicketResponse(t entity.Ticket) ticketResponse {
	return ticketResponse{
		TicketID:          t.TicketID,
		TicketNumber:      t.TicketNumber,
		TicketType:        t.Type,
		Price:             newMoneyResponse(t.Price),
		Status:            t.Status,
		EventID:           t.EventID,
		PurchaseDate:      t.PurchaseDate,
		Access:            t.Access,
		AccessDescription: t.Access.Describe(),
		ArtifactRef:       t.ArtifactRef,
	}
}

type postTicketsRequest struct {
	EventID    string            `json:"event_id"`
	TicketType entity.TicketType `json:"ticket_type"`
	Quantity   int               `json:"quantity"`
}

type postTicketsResponse struct {
	Tickets     []ticketResponse `json:"tickets"`
	TotalPrice  moneyResponse    `json:"total_price"`
	CheckoutURL string           `json:"checkout_url,omitempty"`
	SessionID   string           `json:"session_id,omitempty"`
}

func (s Server) PostTickets(c echo.Context) error {
	var request postTicketsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	result, err := s.service.PurchaseTickets(c.Request().Context(), entity.PurchaseRequest{
		UserID:     requesterID(c),
		EventID:    request.EventID,
		TicketType: request.TicketType,
		Quantity:   request.Quantity,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, postTicketsResponse{
		Tickets:     lo.Map(result.Tickets, func(t entity.Ticket, _ int) ticketResponse { return newTicketResponse(t) }),
		TotalPrice:  newMoneyResponse(result.TotalPrice),
		CheckoutURL: result.CheckoutURL,
		SessionID:   result.SessionID,
	})
}

func (s Server) GetMyTickets(c echo.Context) error {
	views, err := s.service.ListUserTickets(c.Request().Context(), requesterID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(views, func(v entity.TicketView, _ int) ticketResponse {
		return newTicketResponse(v.Ticket)
	}))
}

func (s Server) PostCancelTicket(c echo.Context) error {
	err := s.service.CancelTicket(c.Request().Context(), c.Param("ticket_id"), requesterID(c))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
