package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/labstack/echo/v4"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case service.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrTripNotFound),
		errors.Is(err, service.ErrPriceRuleNotFound),
		errors.Is(err, service.ErrAlertNotFound),
		errors.Is(err, service.ErrUnknownProvider):
		return http.StatusNotFound
	case service.IsCapacityExceeded(err),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicatePayment),
		errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict
	case service.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPaymentNotPaid):
		return http.StatusPaymentRequired
	case service.IsExternalServiceError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusFor(err)
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request().Method, c.Path(), err)
		if code == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
