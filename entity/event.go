package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusClosed    EventStatus = "CLOSED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusClosed, EventStatusCancelled:
		return true
	}
	return false
}

type Event struct {
	EventID   string    `json:"event_id" db:"event_id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	// MaxCapacity nil means the event is unbounded.
	MaxCapacity   *int                           `json:"max_capacity" db:"max_capacity"`
	ActiveTickets int                            `json:"active_tickets" db:"active_tickets"`
	Prices        map[TicketType]decimal.Decimal `json:"prices" db:"-"`
	Status        EventStatus                    `json:"status" db:"status"`
}

func NewEvent(eventID, title string, startDate time.Time, maxCapacity *int, prices map[TicketType]decimal.Decimal) (Event, error) {
	if eventID == "" {
		return Event{}, ErrValidation.WithMessage("event id must be set")
	}
	if title == "" {
		return Event{}, ErrValidation.WithMessage("event title must be set")
	}
	if maxCapacity != nil && *maxCapacity < 0 {
		return Event{}, ErrValidation.WithMessage("max capacity must not be negative")
	}
	for ticketType, price := range prices {
		if !ticketType.Purchasable() {
			return Event{}, ErrValidation.WithMessage("ticket type %s cannot carry a price", ticketType)
		}
		if price.IsNegative() {
			return Event{}, ErrValidation.WithMessage("price for %s must not be negative", ticketType)
		}
	}

	return Event{
		EventID:     eventID,
		Title:       title,
		StartDate:   startDate,
		MaxCapacity: maxCapacity,
		Prices:      prices,
		Status:      EventStatusUpcoming,
	}, nil
}

// RemainingCapacity returns the number of tickets still available, or -1 for unbounded events.
func (e Event) RemainingCapacity() int {
	if e.MaxCapacity == nil {
		return -1
	}
	return *e.MaxCapacity - e.ActiveTickets
}

func (e Event) CanReserve(quantity int) bool {
	return e.MaxCapacity == nil || e.ActiveTickets+quantity <= *e.MaxCapacity
}
