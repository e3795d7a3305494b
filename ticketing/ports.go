package ticketing

import (
	"context"

	"backstage/entity"
)

type UserRepository interface {
	// UserByID returns entity.ErrUserNotFound when the user is unknown.
	UserByID(ctx context.Context, userID string) (entity.User, error)
	// SaveUser stores identity and role. The cached access projection is left untouched.
	SaveUser(ctx context.Context, user entity.User) error
	UpdateUserAccess(ctx context.Context, userID string, access entity.UserAccess) error
}

type EventRepository interface {
	// EventByID returns entity.ErrEventNotFound when the event is unknown.
	EventByID(ctx context.Context, eventID string) (entity.Event, error)
	AddEvent(ctx context.Context, event entity.Event) error
	// ReserveCapacity atomically bumps the active ticket counter, or returns
	// entity.ErrCapacityExceeded if the event would go over its max capacity.
	ReserveCapacity(ctx context.Context, eventID string, quantity int) error
	ReleaseCapacity(ctx context.Context, eventID string, quantity int) error
}

type TicketRepository interface {
	AddTickets(ctx context.Context, tickets []entity.Ticket) error
	// TicketByID returns entity.ErrTicketNotFound when the ticket is unknown.
	TicketByID(ctx context.Context, ticketID string) (entity.Ticket, error)
	TicketsByOwner(ctx context.Context, ownerID string) ([]entity.Ticket, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, status entity.TicketStatus) error
	SetArtifactRef(ctx context.Context, ticketID string, ref string) error
}

type PaymentRepository interface {
	AddPayments(ctx context.Context, payments []entity.Payment) error
	// PaymentByTicketID returns entity.ErrPaymentNotFound when the ticket has no payment.
	PaymentByTicketID(ctx context.Context, ticketID string) (entity.Payment, error)
	UpdatePayment(ctx context.Context, payment entity.Payment) error
}

// EventPublisher publishes domain events atomically with the surrounding unit of work.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.DomainEvent) error
}

type UnitOfWork interface {
	UserRepository
	EventRepository
	TicketRepository
	PaymentRepository
	EventPublisher
}

// Transactor runs fn in a single serializable unit of work. Nothing done through uow is visible
// to other callers unless fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
