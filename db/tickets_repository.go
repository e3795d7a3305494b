package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"backstage/entity"
)

type ticketRow struct {
	entity.Ticket
	PriceAmount   decimal.Decimal `db:"price_amount"`
	PriceCurrency string          `db:"price_currency"`
}

func newTicketRow(ticket entity.Ticket) ticketRow {
	return ticketRow{
		Ticket:        ticket,
		PriceAmount:   ticket.Price.Amount,
		PriceCurrency: ticket.Price.Currency,
	}
}

func (r ticketRow) toEntity() entity.Ticket {
	ticket := r.Ticket
	ticket.Price = entity.Money{Amount: r.PriceAmount, Currency: r.PriceCurrency}
	ticket.Access = entity.AccessFlagsFor(ticket.Type)
	return ticket
}

const selectTickets = `
	SELECT
		ticket_id, ticket_number, ticket_type, price_amount, price_currency, status,
		owner_id, event_id, purchase_date, COALESCE(artifact_ref, '') AS artifact_ref
	FROM tickets
`

func (u *unitOfWork) AddTickets(ctx context.Context, tickets []entity.Ticket) error {
	for _, ticket := range tickets {
		_, err := u.tx.NamedExecContext(ctx, `
			INSERT INTO tickets (
				ticket_id, ticket_number, ticket_type, price_amount, price_currency, status,
				owner_id, event_id, purchase_date
			)
			VALUES (
				:ticket_id, :ticket_number, :ticket_type, :price_amount, :price_currency, :status,
				:owner_id, :event_id, :purchase_date
			)
		`, newTicketRow(ticket))
		if err != nil {
			return fmt.Errorf("could not add ticket %s: %w", ticket.TicketNumber, err)
		}
	}

	return nil
}

func (u *unitOfWork) TicketByID(ctx context.Context, ticketID string) (entity.Ticket, error) {
	var row ticketRow
	err := u.tx.GetContext(ctx, &row, selectTickets+`WHERE ticket_id = $1`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Ticket{}, entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID)
	}
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("could not get ticket %s: %w", ticketID, err)
	}

	return row.toEntity(), nil
}

func (u *unitOfWork) TicketsByOwner(ctx context.Context, ownerID string) ([]entity.Ticket, error) {
	var rows []ticketRow
	err := u.tx.SelectContext(ctx, &rows, selectTickets+`WHERE owner_id = $1 ORDER BY purchase_date, ticket_number`, ownerID)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(r ticketRow, _ int) entity.Ticket { return r.toEntity() }), nil
}

func (u *unitOfWork) UpdateTicketStatus(ctx context.Context, ticketID string, status entity.TicketStatus) error {
	res, err := u.tx.ExecContext(ctx, `UPDATE tickets SET status = $2 WHERE ticket_id = $1`, ticketID, status)
	if err != nil {
		return err
	}

	return expectAffected(res, entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID))
}

func (u *unitOfWork) SetArtifactRef(ctx context.Context, ticketID string, ref string) error {
	res, err := u.tx.ExecContext(ctx, `UPDATE tickets SET artifact_ref = $2 WHERE ticket_id = $1`, ticketID, ref)
	if err != nil {
		return fmt.Errorf("could not set artifact of %s: %w", ticketID, err)
	}

	return expectAffected(res, entity.ErrTicketNotFound.WithMessage("ticket %s not found", ticketID))
}
