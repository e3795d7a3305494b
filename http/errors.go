package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"backstage/entity"
)

type errorResponse struct {
	Code    entity.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Detail  string           `json:"detail,omitempty"`
}

var statusByCode = map[entity.ErrorCode]int{
	entity.CodeUnauthenticated:          http.StatusUnauthorized,
	entity.CodeRoleNotEligible:          http.StatusForbidden,
	entity.CodeForbidden:                http.StatusForbidden,
	entity.CodeUserNotFound:             http.StatusNotFound,
	entity.CodeEventNotFound:            http.StatusNotFound,
	entity.CodeTicketNotFound:           http.StatusNotFound,
	entity.CodePaymentNotFound:          http.StatusNotFound,
	entity.CodeEventNotPurchasable:      http.StatusConflict,
	entity.CodeCapacityExceeded:         http.StatusConflict,
	entity.CodeTicketNotActive:          http.StatusConflict,
	entity.CodePaymentAlreadySettled:    http.StatusConflict,
	entity.CodeTicketTypeNotPurchasable: http.StatusBadRequest,
	entity.CodeInvalidQuantity:          http.StatusBadRequest,
	entity.CodeValidation:               http.StatusBadRequest,
	entity.CodeInternal:                 http.StatusInternalServerError,
}

func (s Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code := entity.CodeValidation
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			_ = c.JSON(httpErr.Code, errorResponse{Code: code, Message: http.StatusText(httpErr.Code)})
			return
		case http.StatusUnauthorized:
			code = entity.CodeUnauthenticated
		}
		err = entity.NewError(code, http.StatusText(httpErr.Code))
	}

	coded := entity.AsError(err)
	status, ok := statusByCode[coded.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	response := errorResponse{Code: coded.Code, Message: coded.Message}
	if status == http.StatusInternalServerError {
		log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")
		response.Message = entity.ErrInternal.Message
	}
	if s.diagnosticErrors {
		response.Detail = err.Error()
	}

	if err := c.JSON(status, response); err != nil {
		log.FromContext(c.Request().Context()).WithError(err).Error("Could not write error response")
	}
}
