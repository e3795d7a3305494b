// Package memory is an in-process store with the same unit-of-work semantics as the Postgres
// store. Units of work are fully serialized and changes are applied only on success.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"backstage/entity"
	"backstage/ticketing"
)

type state struct {
	users           map[string]entity.User
	events          map[string]entity.Event
	tickets         map[string]entity.Ticket
	ticketNumbers   map[string]string
	payments        map[string]entity.Payment
	paymentByTicket map[string]string
}

func newState() state {
	return state{
		users:           map[string]entity.User{},
		events:          map[string]entity.Event{},
		tickets:         map[string]entity.Ticket{},
		ticketNumbers:   map[string]string{},
		payments:        map[string]entity.Payment{},
		paymentByTicket: map[string]string{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.ticketNumbers {
		c.ticketNumbers[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.paymentByTicket {
		c.paymentByTicket[k] = v
	}
	return c
}

type Store struct {
	mu        sync.Mutex
	state     state
	published []entity.DomainEvent
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, uow ticketing.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	uow := &unitOfWork{state: s.state.clone()}
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = uow.state
	s.published = append(s.published, uow.published...)

	return nil
}

// PublishedEvents returns events of committed units of work, in commit order.
func (s *Store) PublishedEvents() []entity.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.DomainEvent(nil), s.published...)
}

func (s *Store) Tickets() []entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedTickets(s.state.tickets, func(entity.Ticket) bool { return true })
}

func (s *Store) Payments() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := make([]entity.Payment, 0, len(s.state.payments))
	for _, p := range s.state.payments {
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaymentID < payments[j].PaymentID })

	return payments
}

type unitOfWork struct {
	state     state
	published []entity.DomainEvent
}

func (u *unitOfWork) UserByID(_ context.Context, userID string) (entity.User, error) {
	user, ok := u.state.users[userID]
	if !ok {
		return entity.User{}, entity.ErrUserNotFound.WithMessage("user %s not found", userID)
	}
	return user, nil
}

func (u *unitOfWork) SaveUser(_ context.Context, user entity.User) error {
	if existing, ok := u.state.users[user.UserID]; ok {
		user.UserAccess = existing.UserAccess
	} else {
		user.UserAccess = entity.UserAccess{}
	}
	u.state.users[user.UserID] = user
	return nil
}

func (u *unitOfWork) UpdateUserAccess(_ context.Context, userID string, access entity.UserAccess) error {
	user, ok := u.state.users[userID]
	if !ok {
		return entity.ErrUserNotFound.WithMessage("user %s not found", userID)
	}
	user.UserAccess = access
	u.state.users[userID] = user
	return nil
}

func (u *unitOfWork) EventByID(_ context.Context, eventID string) (entity.Event, error) {
	event, ok := u.state.events[eventID]
	if !ok {
		return entity.Event{}, entity.ErrEventNotFound.WithMessage("event %s not found", eventID)
	}
	return event, nil
}

func (u *unitOfWork) AddEvent(_ context.Context, event entity.Event) error {
	if _, ok := u.state.events[event.EventID]; ok {
		return entity.ErrValidation.WithMessage("event %s already exists", event.EventID)
	}
	u.state.events[event.EventID] = event
	return nil
}

func (u *unitOfWork) ReserveCapacity(_ context.Context, eventID string, quantity int) error {
	event, ok := u.state.events[eventID]
	if !ok {
		return entity.ErrEventNotFound.WithMessage("event %s not found", eventID)
	}
	if !event.CanReserve(quantity) {
		return entity.ErrCapacityExceeded.WithMessage("only %d tickets left for event %s", event.RemainingCapacity(), eventID)
	}
	event.ActiveTickets += quantity
	u.state.events[eventID] = event
	return nil
}

func (u *unitOfWork) ReleaseCapacity(_ context.Context, eventID string, quantity int) error {
	event, ok := u.state.events[eventID]
	if !ok {
		return entity.ErrEventNotFound.WithMessage("event %s not found", eventID)
	}
	event.ActiveTickets -= quantity
	if event.ActiveTickets < 0 {
		event.ActiveTickets = 0
	}
	u.state.events[eventID] = event
	return nil
}

func (u *unitOfWork) AddTickets(_ context.Context, tickets []entity.Ticket) error {
	for _, t := range tickets {
		if _, ok := u.state.ticketNumbers[t.TicketNumber]; ok {
			return fmt.Errorf("duplicate ticket number %s", t.TicketNumber)
		}
		u.state.ticketNumbers[t.TicketNumber] = t.TicketID
		u.state.tickets[t.TicketID] = t
	}
	return nil
}

func (u *unitOfWork) TicketByID(_ context.Context, ticketID string) (entity.Ticket, error) {
	ticket, ok := u.state.tickets[ticketID]
	if !ok {
		return entity.Ticket{}, entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID)
	}
	return ticket, nil
}

func (u *unitOfWork) TicketsByOwner(_ context.Context, ownerID string) ([]entity.Ticket, error) {
	return sortedTickets(u.state.tickets, func(t entity.Ticket) bool { return t.OwnerID == ownerID }), nil
}

func (u *unitOfWork) UpdateTicketStatus(_ context.Context, ticketID string, status entity.TicketStatus) error {
	ticket, ok := u.state.tickets[ticketID]
	if !ok {
		return entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID)
	}
	ticket.Status = status
	u.state.tickets[ticketID] = ticket
	return nil
}

func (u *unitOfWork) SetArtifactRef(_ context.Context, ticketID string, ref string) error {
	ticket, ok := u.state.tickets[ticketID]
	if !ok {
		return entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID)
	}
	ticket.ArtifactRef = ref
	u.state.tickets[ticketID] = ticket
	return nil
}

func (u *unitOfWork) AddPayments(_ context.Context, payments []entity.Payment) error {
	for _, p := range payments {
		if _, ok := u.state.tickets[p.TicketID]; !ok {
			return fmt.Errorf("payment %s references unknown ticket %s", p.PaymentID, p.TicketID)
		}
		if _, ok := u.state.paymentByTicket[p.TicketID]; ok {
			return fmt.Errorf("ticket %s already has a payment", p.TicketID)
		}
		u.state.payments[p.PaymentID] = p
		u.state.paymentByTicket[p.TicketID] = p.PaymentID
	}
	return nil
}

func (u *unitOfWork) PaymentByTicketID(_ context.Context, ticketID string) (entity.Payment, error) {
	paymentID, ok := u.state.paymentByTicket[ticketID]
	if !ok {
		return entity.Payment{}, entity.ErrPaymentNotFound.WithMessage("no payment for ticket %s", ticketID)
	}
	return u.state.payments[paymentID], nil
}

func (u *unitOfWork) UpdatePayment(_ context.Context, payment entity.Payment) error {
	if _, ok := u.state.payments[payment.PaymentID]; !ok {
		return entity.ErrPaymentNotFound.WithMessage("payment %s not found", payment.PaymentID)
	}
	u.state.payments[payment.PaymentID] = payment
	return nil
}

func (u *unitOfWork) Publish(_ context.Context, event entity.DomainEvent) error {
	u.published = append(u.published, event)
	return nil
}

func sortedTickets(tickets map[string]entity.Ticket, keep func(entity.Ticket) bool) []entity.Ticket {
	result := make([]entity.Ticket, 0)
	for _, t := range tickets {
		if keep(t) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PurchaseDate.Equal(result[j].PurchaseDate) {
			return result[i].PurchaseDate.Before(result[j].PurchaseDate)
		}
		return result[i].TicketNumber < result[j].TicketNumber
	})
	return result
}
