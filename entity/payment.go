package entity

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentOutcome is what the payment processor reports for a pending payment.
type PaymentOutcome string

const (
	PaymentOutcomeSucceeded PaymentOutcome = "SUCCEEDED"
	PaymentOutcomeFailed    PaymentOutcome = "FAILED"
)

func (o PaymentOutcome) Valid() bool {
	return o == PaymentOutcomeSucceeded || o == PaymentOutcomeFailed
}

type Payment struct {
	PaymentID string        `json:"payment_id" db:"payment_id"`
	TicketID  string        `json:"ticket_id" db:"ticket_id"`
	Amount    Money         `json:"amount" db:"-"`
	Status    PaymentStatus `json:"status" db:"status"`
	Strategy  string        `json:"strategy" db:"strategy"`
	SessionID string        `json:"session_id,omitempty" db:"session_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	SettledAt *time.Time    `json:"settled_at,omitempty" db:"settled_at"`
}

// Settle applies the processor outcome. Only PENDING payments move; COMPLETED → REFUNDED is
// reserved for a refund flow.
func (p Payment) Settle(outcome PaymentOutcome, now time.Time) (Payment, error) {
	if p.Status != PaymentStatusPending {
		return Payment{}, ErrPaymentAlreadySettled.WithMessage("payment %s is %s", p.PaymentID, p.Status)
	}

	switch outcome {
	case PaymentOutcomeSucceeded:
		p.Status = PaymentStatusCompleted
	case PaymentOutcomeFailed:
		p.Status = PaymentStatusFailed
	default:
		return Payment{}, ErrValidation.WithMessage("unknown payment outcome %q", outcome)
	}
	p.SettledAt = &now

	return p, nil
}

// Status is the payment status a successful settlement with this outcome ends in.
func (o PaymentOutcome) Status() PaymentStatus {
	if o == PaymentOutcomeSucceeded {
		return PaymentStatusCompleted
	}
	return PaymentStatusFailed
}
