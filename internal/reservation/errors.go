package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrRedirectHome       = errors.New("no reservation session found")
	ErrSessionExpired     = errors.New("reservation hold has expired")
	ErrNotInitialized     = errors.New("reservation session is not initialized")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrPassengerIndex     = errors.New("passenger index out of range")
)

// ValidationError is a local precondition failure. No network call is made
// and session state is left as it was.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

var (
	ErrNoSeats               = &ValidationError{Field: "selectedSeats", Msg: "at least one seat and passenger are required"}
	ErrDuplicateSeat         = &ValidationError{Field: "selectedSeats", Msg: "each seat can be selected only once"}
	ErrTripRequired          = &ValidationError{Field: "tripId", Msg: "trip is required"}
	ErrPaymentMethodRequired = &ValidationError{Field: "paymentMethod", Msg: "payment method is required"}
	ErrInvalidPaymentMethod  = &ValidationError{Field: "paymentMethod", Msg: "payment method is not supported"}
	ErrPolicyNotAccepted     = &ValidationError{Field: "policyAccepted", Msg: "terms and policies must be accepted"}
	ErrEmailRequired         = &ValidationError{Field: "email", Msg: "email is required for guest bookings"}
	ErrPhoneRequired         = &ValidationError{Field: "phone", Msg: "phone is required for guest bookings"}
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SubmissionError wraps a backend or transport failure. The session is kept.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "reservation submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
