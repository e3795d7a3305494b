package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"backstage/entity"
)

type postEventRequest struct {
	EventID     string                                `json:"event_id"`
	Title       string                                `json:"title"`
	StartDate   time.Time                             `json:"start_date"`
	MaxCapacity *int                                  `json:"max_capacity"`
	Prices      map[entity.TicketType]decimal.Decimal `json:"prices"`
}

type eventResponse struct {
	EventID           string                       `json:"event_id"`
	Title             string                       `json:"title"`
	StartDate         time.Time                    `json:"start_date"`
	Status            entity.EventStatus           `json:"status"`
	MaxCapacity       *int                         `json:"max_capacity"`
	ActiveTickets     int                          `json:"active_tickets"`
	RemainingCapacity *int                         `json:"remaining_capacity"`
	Prices            map[entity.TicketType]string `json:"prices,omitempty"`
}

func newEventResponse(e entity.Event) eventResponse {
	response := eventResponse{
		EventID:       e.EventID,
		Title:         e.Title,
		StartDate:     e.StartDate,
		Status:        e.Status,
		MaxCapacity:   e.MaxCapacity,
		ActiveTickets: e.ActiveTickets,
	}
	if e.MaxCapacity != nil {
		remaining := e.RemainingCapacity()
		response.RemainingCapacity = &remaining
	}
	if len(e.Prices) > 0 {
		response.Prices = make(map[entity.TicketType]string, len(e.Prices))
		for t, p := range e.Prices {
			response.Prices[t] = p.StringFixed(2)
		}
	}
	return response
}

func (s Server) PostEvents(c echo.Context) error {
	ctx := c.Request().Context()

	requester, err := s.service.GetUser(ctx, requesterID(c))
	if err != nil {
		return err
	}
	if requester.Role != entity.RoleAdmin {
		return entity.ErrForbidden.WithMessage("only admins can create events")
	}

	var request postEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	event, err := entity.NewEvent(request.EventID, request.Title, request.StartDate, request.MaxCapacity, request.Prices)
	if err != nil {
		return err
	}

	if err := s.service.CreateEvent(ctx, event); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

func (s Server) GetEvent(c echo.Context) error {
	event, err := s.service.GetEvent(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newEventResponse(event))
}
