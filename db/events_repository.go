package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"backstage/entity"
)

type eventRow struct {
	entity.Event
	PricesJSON string `db:"prices"`
}

func (u *unitOfWork) EventByID(ctx context.Context, eventID string) (entity.Event, error) {
	var row eventRow
	err := u.tx.GetContext(ctx, &row, `
		SELECT event_id, title, start_date, max_capacity, active_tickets, prices, status
		FROM events
		WHERE event_id = $1
	`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, entity.ErrEventNotFound.WithMessage("event %s not found", eventID)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not get event %s: %w", eventID, err)
	}

	event := row.Event
	if err := json.Unmarshal([]byte(row.PricesJSON), &event.Prices); err != nil {
		return entity.Event{}, fmt.Errorf("could not unmarshal prices of event %s: %w", eventID, err)
	}

	return event, nil
}

func (u *unitOfWork) AddEvent(ctx context.Context, event entity.Event) error {
	prices := event.Prices
	if prices == nil {
		prices = map[entity.TicketType]decimal.Decimal{}
	}
	pricesJSON, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("could not marshal prices: %w", err)
	}

	_, err = u.tx.NamedExecContext(ctx, `
		INSERT INTO events (event_id, title, start_date, max_capacity, active_tickets, prices, status)
		VALUES (:event_id, :title, :start_date, :max_capacity, :active_tickets, :prices, :status)
	`, eventRow{Event: event, PricesJSON: string(pricesJSON)})
	if isErrorUniqueViolation(err) {
		return entity.ErrValidation.WithMessage("event %s already exists", event.EventID)
	}
	if err != nil {
		return fmt.Errorf("could not add event %s: %w", event.EventID, err)
	}

	return nil
}

// ReserveCapacity checks and bumps the counter in a single statement, so two transactions can
// never both take the last seats.
func (u *unitOfWork) ReserveCapacity(ctx context.Context, eventID string, quantity int) error {
	res, err := u.tx.ExecContext(ctx, `
		UPDATE events
		SET active_tickets = active_tickets + $2
		WHERE event_id = $1
		  AND (max_capacity IS NULL OR active_tickets + $2 <= max_capacity)
	`, eventID, quantity)
	if err != nil {
		return fmt.Errorf("could not reserve capacity of %s: %w", eventID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 1 {
		return nil
	}

	event, err := u.EventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.MaxCapacity == nil {
		return fmt.Errorf("could not reserve capacity of unbounded event %s", eventID)
	}

	return entity.ErrCapacityExceeded.WithMessage(
		"event %s has %d of %d seats taken, %d requested",
		eventID, event.ActiveTickets, *event.MaxCapacity, quantity,
	)
}

func (u *unitOfWork) ReleaseCapacity(ctx context.Context, eventID string, quantity int) error {
	res, err := u.tx.ExecContext(ctx, `
		UPDATE events
		SET active_tickets = GREATEST(active_tickets - $2, 0)
		WHERE event_id = $1
	`, eventID, quantity)
	if err != nil {
		return fmt.Errorf("could not release capacity of %s: %w", eventID, err)
	}

	return expectAffected(res, entity.ErrEventNotFound.WithMessage("event %s not found", eventID))
}
