package service

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrPriceRuleNotFound = errors.New("price rule not found")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrDuplicatePayment  = errors.New("payment reference already used by another booking")
	ErrPaymentInProgress = errors.New("payment verification already in progress")
	ErrPaymentNotPaid    = errors.New("payment was not successful")
	ErrUnknownProvider   = errors.New("unknown payment provider")
)

// ConfigurationError means the route has no usable price rule. It ends the
// allocation attempt and is not retried.
type ConfigurationError struct {
	PriceRuleID string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.PriceRuleID, e.Reason)
}

// CapacityExceededError means every vehicle allowed for the group is full.
type CapacityExceededError struct {
	PriceRuleID string
	Date        string
	MaxVehicles int
	PerVehicle  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("all %d vehicles (%d seats each) for %s on %s are full",
		e.MaxVehicles, e.PerVehicle, e.PriceRuleID, e.Date)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ExternalServiceError wraps a failed call to a gateway or mail provider.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsCapacityExceeded(err error) bool {
	var target *CapacityExceededError
	return errors.As(err, &target)
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsExternalServiceError(err error) bool {
	var target *ExternalServiceError
	return errors.As(err, &target)
}

// IsAllocationFailure reports the errors that leave a booking without a trip
// but otherwise intact.
func IsAllocationFailure(err error) bool {
	return IsCapacityExceeded(err) || IsConfigurationError(err)
}
