package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"backstage/entity"
)

type paymentRow struct {
	entity.Payment
	AmountValue decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
}

func (r paymentRow) toEntity() entity.Payment {
	payment := r.Payment
	payment.Amount = entity.Money{Amount: r.AmountValue, Currency: r.Currency}
	return payment
}

func (u *unitOfWork) AddPayments(ctx context.Context, payments []entity.Payment) error {
	for _, payment := range payments {
		_, err := u.tx.NamedExecContext(ctx, `
			INSERT INTO payments (
				payment_id, ticket_id, amount, currency, status, strategy, session_id, created_at, settled_at
			)
			VALUES (
				:payment_id, :ticket_id, :amount, :currency, :status, :strategy, NULLIF(:session_id, ''), :created_at, :settled_at
			)
		`, paymentRow{Payment: payment, AmountValue: payment.Amount.Amount, Currency: payment.Amount.Currency})
		if err != nil {
			return fmt.Errorf("could not add payment for ticket %s: %w", payment.TicketID, err)
		}
	}

	return nil
}

func (u *unitOfWork) PaymentByTicketID(ctx context.Context, ticketID string) (entity.Payment, error) {
	var row paymentRow
	err := u.tx.GetContext(ctx, &row, `
		SELECT
			payment_id, ticket_id, amount, currency, status, strategy,
			COALESCE(session_id, '') AS session_id, created_at, settled_at
		FROM payments
		WHERE ticket_id = $1
	`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Payment{}, entity.ErrPaymentNotFound.WithMessage("no payment for ticket %s", ticketID)
	}
	if err != nil {
		return entity.Payment{}, fmt.Errorf("could not get payment of ticket %s: %w", ticketID, err)
	}

	return row.toEntity(), nil
}

func (u *unitOfWork) UpdatePayment(ctx context.Context, payment entity.Payment) error {
	res, err := u.tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, settled_at = $3
		WHERE payment_id = $1
	`, payment.PaymentID, payment.Status, payment.SettledAt)
	if err != nil {
		return err
	}

	return expectAffected(res, entity.ErrPaymentNotFound.WithMessage("payment %s not found", payment.PaymentID))
}
