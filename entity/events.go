package entity

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything published on the event bus.
type DomainEvent interface {
	IsInternal() bool
}

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type TicketIssued_v1 struct {
	Header       EventHeader `json:"header"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	TicketType   TicketType  `json:"ticket_type"`
	EventID      string      `json:"event_id"`
	OwnerID      string      `json:"owner_id"`
	OwnerEmail   string      `json:"owner_email"`
	Price        Money       `json:"price"`
	Access       AccessFlags `json:"access"`
}

func (TicketIssued_v1) IsInternal() bool { return false }

type TicketCancelled_v1 struct {
	Header       EventHeader `json:"header"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	EventID      string      `json:"event_id"`
	OwnerID      string      `json:"owner_id"`
	CancelledBy  string      `json:"cancelled_by"`
	Price        Money       `json:"price"`
}

func (TicketCancelled_v1) IsInternal() bool { return false }

type PaymentSettled_v1 struct {
	Header    EventHeader   `json:"header"`
	PaymentID string        `json:"payment_id"`
	TicketID  string        `json:"ticket_id"`
	Status    PaymentStatus `json:"status"`
	Amount    Money         `json:"amount"`
	Strategy  string        `json:"strategy"`
}

func (PaymentSettled_v1) IsInternal() bool { return false }

type DataLakeEvent struct {
	ID          string    `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	Name        string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
