package entity

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeUnauthenticated          ErrorCode = "UNAUTHENTICATED"
	CodeUserNotFound             ErrorCode = "USER_NOT_FOUND"
	CodeRoleNotEligible          ErrorCode = "ROLE_NOT_ELIGIBLE"
	CodeEventNotFound            ErrorCode = "EVENT_NOT_FOUND"
	CodeEventNotPurchasable      ErrorCode = "EVENT_NOT_PURCHASABLE"
	CodeCapacityExceeded         ErrorCode = "CAPACITY_EXCEEDED"
	CodeTicketTypeNotPurchasable ErrorCode = "TICKET_TYPE_NOT_PURCHASABLE"
	CodeInvalidQuantity          ErrorCode = "INVALID_QUANTITY"
	CodeValidation               ErrorCode = "VALIDATION_ERROR"
	CodeInternal                 ErrorCode = "INTERNAL_ERROR"

	CodeTicketNotFound        ErrorCode = "TICKET_NOT_FOUND"
	CodeTicketNotActive       ErrorCode = "TICKET_NOT_ACTIVE"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodePaymentNotFound       ErrorCode = "PAYMENT_NOT_FOUND"
	CodePaymentAlreadySettled ErrorCode = "PAYMENT_ALREADY_SETTLED"
)

// Error is a client-facing failure with a stable code.
type Error struct {
	Code    ErrorCode
	Message string
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so callers can compare against the sentinels
// below even when the message was specialised.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUnauthenticated          = NewError(CodeUnauthenticated, "requester is not authenticated")
	ErrUserNotFound             = NewError(CodeUserNotFound, "user not found")
	ErrRoleNotEligible          = NewError(CodeRoleNotEligible, "role is not eligible to purchase tickets")
	ErrEventNotFound            = NewError(CodeEventNotFound, "event not found")
	ErrEventNotPurchasable      = NewError(CodeEventNotPurchasable, "event is not open for sales")
	ErrCapacityExceeded         = NewError(CodeCapacityExceeded, "not enough capacity left for this event")
	ErrTicketTypeNotPurchasable = NewError(CodeTicketTypeNotPurchasable, "ticket type cannot be purchased")
	ErrInvalidQuantity          = NewError(CodeInvalidQuantity, "quantity must be between 1 and 5")
	ErrValidation               = NewError(CodeValidation, "invalid request")
	ErrInternal                 = NewError(CodeInternal, "internal error")

	ErrTicketNotFound        = NewError(CodeTicketNotFound, "ticket not found")
	ErrTicketNotActive       = NewError(CodeTicketNotActive, "ticket is not active")
	ErrForbidden             = NewError(CodeForbidden, "requester may not perform this operation")
	ErrPaymentNotFound       = NewError(CodePaymentNotFound, "payment not found")
	ErrPaymentAlreadySettled = NewError(CodePaymentAlreadySettled, "payment is already settled")
)

// AsError extracts the coded error from err. Anything without a code is collaborator-caused and
// reported as INTERNAL_ERROR.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}
