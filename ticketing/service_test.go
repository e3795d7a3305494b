package ticketing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backstage/db/memory"
	"backstage/entity"
	"backstage/gateway"
	"backstage/ticketing"
)

type fixture struct {
	store   *memory.Store
	service *ticketing.Service
}

func testCatalog(t *testing.T) entity.PricingCatalog {
	t.Helper()

	catalog, err := entity.NewPricingCatalog("EUR", map[entity.TicketType]decimal.Decimal{
		entity.TicketTypeStandard:  decimal.RequireFromString("89.50"),
		entity.TicketTypeVIP:       decimal.RequireFromString("150.00"),
		entity.TicketTypeBackstage: decimal.RequireFromString("299.00"),
	})
	require.NoError(t, err)
	return catalog
}

func newFixture(t *testing.T, strategy ticketing.PaymentStrategy) fixture {
	t.Helper()

	if strategy == nil {
		strategy = ticketing.NewSynchronousFallback()
	}

	store := memory.NewStore()
	return fixture{
		store:   store,
		service: ticketing.NewService(store, testCatalog(t), strategy),
	}
}

func (f fixture) addUser(t *testing.T, role entity.Role) entity.User {
	t.Helper()

	id := "user-" + uuid.NewString()
	user, err := f.service.UpsertUser(context.Background(), id, id+"@example.com", role)
	require.NoError(t, err)
	return user
}

func (f fixture) addEvent(t *testing.T, maxCapacity *int) entity.Event {
	t.Helper()

	event, err := entity.NewEvent(
		"event-"+uuid.NewString(),
		"Summer Tour",
		time.Now().Add(30*24*time.Hour),
		maxCapacity,
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, f.service.CreateEvent(context.Background(), event))
	return event
}

func requireCode(t *testing.T, err error, code entity.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, code, entity.AsError(err).Code, "unexpected error: %v", err)
}

func TestPurchaseTickets_vip_pair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, nil)

	result, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeVIP,
		Quantity:   2,
	})
	require.NoError(t, err)

	require.Len(t, result.Tickets, 2)
	assert.Equal(t, "300.00 EUR", result.TotalPrice.String())
	assert.NotEqual(t, result.Tickets[0].TicketNumber, result.Tickets[1].TicketNumber)
	for _, ticket := range result.Tickets {
		assert.Equal(t, entity.TicketStatusActive, ticket.Status)
		assert.True(t, ticket.Access.VIP)
		assert.True(t, ticket.Access.Premium)
		assert.False(t, ticket.Access.Backstage)
	}

	refreshed, err := f.service.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, refreshed.HasVIPAccess)
	assert.True(t, refreshed.HasPremiumAccess)
	assert.False(t, refreshed.HasBackstageAccess)

	payments := f.store.Payments()
	require.Len(t, payments, 2)
	for _, payment := range payments {
		assert.Equal(t, entity.PaymentStatusCompleted, payment.Status)
		assert.Equal(t, ticketing.StrategySynchronousFallback, payment.Strategy)
	}

	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ActiveTickets)
}

func TestPurchaseTickets_standard_grants_premium_only(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, nil)

	result, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeStandard,
		Quantity:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, "89.50 EUR", result.TotalPrice.String())

	refreshed, err := f.service.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, refreshed.HasPremiumAccess)
	assert.False(t, refreshed.HasVIPAccess)
	assert.False(t, refreshed.HasBackstageAccess)
}

func TestPurchaseTickets_band_member_is_rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.addUser(t, entity.RoleBand)
	event := f.addEvent(t, nil)

	_, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeStandard,
		Quantity:   1,
	})
	requireCode(t, err, entity.CodeRoleNotEligible)

	assert.Empty(t, f.store.Tickets())
	assert.Empty(t, f.store.Payments())
	assert.Empty(t, f.store.PublishedEvents())
}

func TestPurchaseTickets_rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	fan := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, nil)

	cancelled, err := entity.NewEvent("cancelled-event", "Called off", time.Now().Add(time.Hour), nil, nil)
	require.NoError(t, err)
	cancelled.Status = entity.EventStatusCancelled
	require.NoError(t, f.service.CreateEvent(ctx, cancelled))

	testCases := []struct {
		Name    string
		Request entity.PurchaseRequest
		Code    entity.ErrorCode
	}{
		{
			Name:    "band_pass",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: event.EventID, TicketType: entity.TicketTypeBandPass, Quantity: 1},
			Code:    entity.CodeTicketTypeNotPurchasable,
		},
		{
			Name:    "admin_pass",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: event.EventID, TicketType: entity.TicketTypeAdminPass, Quantity: 1},
			Code:    entity.CodeTicketTypeNotPurchasable,
		},
		{
			Name:    "zero_quantity",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: event.EventID, TicketType: entity.TicketTypeStandard, Quantity: 0},
			Code:    entity.CodeInvalidQuantity,
		},
		{
			Name:    "six_tickets",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: event.EventID, TicketType: entity.TicketTypeStandard, Quantity: 6},
			Code:    entity.CodeInvalidQuantity,
		},
		{
			Name:    "unknown_user",
			Request: entity.PurchaseRequest{UserID: "ghost", EventID: event.EventID, TicketType: entity.TicketTypeStandard, Quantity: 1},
			Code:    entity.CodeUserNotFound,
		},
		{
			Name:    "unknown_event",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: "no-such-event", TicketType: entity.TicketTypeStandard, Quantity: 1},
			Code:    entity.CodeEventNotFound,
		},
		{
			Name:    "cancelled_event",
			Request: entity.PurchaseRequest{UserID: fan.UserID, EventID: cancelled.EventID, TicketType: entity.TicketTypeStandard, Quantity: 1},
			Code:    entity.CodeEventNotPurchasable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := f.service.PurchaseTickets(ctx, tc.Request)
			requireCode(t, err, tc.Code)
		})
	}

	assert.Empty(t, f.store.Tickets())
}

func TestPurchaseTickets_last_seat_goes_to_one_buyer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	event := f.addEvent(t, lo.ToPtr(1))
	first := f.addUser(t, entity.RoleFan)
	second := f.addUser(t, entity.RoleFan)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []entity.User{first, second} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
				UserID:     userID,
				EventID:    event.EventID,
				TicketType: entity.TicketTypeStandard,
				Quantity:   1,
			})
		}(i, user.UserID)
	}
	wg.Wait()

	succeeded := lo.CountBy(errs, func(err error) bool { return err == nil })
	assert.Equal(t, 1, succeeded)

	failed, _ := lo.Find(errs, func(err error) bool { return err != nil })
	requireCode(t, failed, entity.CodeCapacityExceeded)

	assert.Len(t, f.store.Tickets(), 1)
	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ActiveTickets)
}

func TestPurchaseTickets_capacity_is_never_exceeded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	event := f.addEvent(t, lo.ToPtr(10))

	workers := 20
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		user := f.addUser(t, entity.RoleFan)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
				UserID:     user.UserID,
				EventID:    event.EventID,
				TicketType: entity.TicketTypeStandard,
				Quantity:   3,
			})
		}(i)
	}
	wg.Wait()

	succeeded := lo.CountBy(results, func(err error) bool { return err == nil })
	assert.Equal(t, 3, succeeded)
	for _, err := range results {
		if err != nil {
			requireCode(t, err, entity.CodeCapacityExceeded)
		}
	}

	assert.Len(t, f.store.Tickets(), 9)
	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.ActiveTickets)
}

func TestPurchaseTickets_payment_failure_rolls_back(t *testing.T) {
	ctx := context.Background()
	processor := &gateway.PaymentProcessorMock{Err: errors.New("processor unavailable")}
	f := newFixture(t, ticketing.NewAsynchronousGateway(processor, time.Second))
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, lo.ToPtr(5))

	_, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeVIP,
		Quantity:   2,
	})
	requireCode(t, err, entity.CodeInternal)

	assert.Empty(t, f.store.Tickets())
	assert.Empty(t, f.store.Payments())
	assert.Empty(t, f.store.PublishedEvents())

	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ActiveTickets)

	refreshed, err := f.service.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.False(t, refreshed.HasVIPAccess)
}

// blockingProcessor never answers before the caller gives up.
type blockingProcessor struct{}

func (blockingProcessor) CreateCheckoutSession(ctx context.Context, _ ticketing.CheckoutRequest) (ticketing.CheckoutSession, error) {
	<-ctx.Done()
	return ticketing.CheckoutSession{}, ctx.Err()
}

func TestPurchaseTickets_processor_timeout_rolls_back(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ticketing.NewAsynchronousGateway(blockingProcessor{}, 20*time.Millisecond))
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, lo.ToPtr(5))

	_, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeStandard,
		Quantity:   3,
	})
	requireCode(t, err, entity.CodeInternal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Empty(t, f.store.Tickets())
	assert.Empty(t, f.store.Payments())
	assert.Empty(t, f.store.PublishedEvents())

	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ActiveTickets)
}

var errSerializationFailure = errors.New("could not serialize access due to concurrent update")

// retryingTransactor rolls the next unit of work back once and runs it again, like db.Store does
// on a serialization failure.
type retryingTransactor struct {
	ticketing.Transactor

	retryPending bool
	retries      int
}

func (r *retryingTransactor) InTx(ctx context.Context, fn func(ctx context.Context, uow ticketing.UnitOfWork) error) error {
	if r.retryPending {
		r.retryPending = false

		err := r.Transactor.InTx(ctx, func(ctx context.Context, uow ticketing.UnitOfWork) error {
			if err := fn(ctx, uow); err != nil {
				return err
			}
			return errSerializationFailure
		})
		if !errors.Is(err, errSerializationFailure) {
			return err
		}
		r.retries++
	}

	return r.Transactor.InTx(ctx, fn)
}

func TestPurchaseTickets_checkout_session_matches_committed_tickets_after_retry(t *testing.T) {
	ctx := context.Background()
	processor := &gateway.PaymentProcessorMock{}
	store := memory.NewStore()
	transactor := &retryingTransactor{Transactor: store}
	f := fixture{
		store:   store,
		service: ticketing.NewService(transactor, testCatalog(t), ticketing.NewAsynchronousGateway(processor, time.Second)),
	}
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, lo.ToPtr(5))

	transactor.retryPending = true
	result, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeVIP,
		Quantity:   2,
	})
	require.NoError(t, err)
	require.Equal(t, 1, transactor.retries)
	assert.Equal(t, 1, processor.SessionsCount())

	session, ok := processor.Session(result.SessionID)
	require.True(t, ok)

	committed := lo.Map(f.store.Tickets(), func(t entity.Ticket, _ int) string { return t.TicketID })
	require.Len(t, committed, 2)
	assert.ElementsMatch(t, committed, session.TicketIDs)
	assert.ElementsMatch(t, committed, lo.Map(result.Tickets, func(t entity.Ticket, _ int) string { return t.TicketID }))

	for _, ticketID := range session.TicketIDs {
		require.NoError(t, f.service.SettlePayment(ctx, ticketID, entity.PaymentOutcomeSucceeded))
	}
	for _, payment := range f.store.Payments() {
		assert.Equal(t, entity.PaymentStatusCompleted, payment.Status)
	}

	stored, err := f.service.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ActiveTickets)
}

func TestPurchaseTickets_publishes_issued_events(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.addUser(t, entity.RoleFan)
	event := f.addEvent(t, nil)

	result, err := f.service.PurchaseTickets(ctx, entity.PurchaseRequest{
		UserID:     user.UserID,
		EventID:    event.EventID,
		TicketType: entity.TicketTypeBackstage,
		Quantity:   2,
	})
	require.NoError(t, err)

	issued := lo.FilterMap(f.store.PublishedEvents(), func(e entity.DomainEvent, _ int) (entity.TicketIssued_v1, bool) {
		ev, ok := e.(entity.TicketIssued_v1)
		return ev, ok
	})
	require.Len(t, issued, 2)
	for _, ev := range issued {
		assert.Equal(t, user.Email, ev.OwnerEmail)
		assert.True(t, ev.Access.Backstage)
		assert.Contains(t, lo.Map(result.Tickets, func(t entity.Ticket, _ int) string { return t.TicketID }), ev.TicketID)
		assert.Equal(t, ev.TicketID, ev.Header.IdempotencyKey)
	}

	settled := lo.Filter(f.store.PublishedEvents(), func(e entity.DomainEvent, _ int) bool {
		_, ok := e.(entity.PaymentSettled_v1)
		return ok
	})
	assert.Len(t, settled, 2)
}
