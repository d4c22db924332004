// Package domain holds the error vocabulary shared by repositories, services and handlers.
package domain

import "github.com/cockroachdb/errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	ErrUserNotFound         = errors.Wrap(ErrNotFound, "user")
	ErrEventNotFound        = errors.Wrap(ErrNotFound, "event")
	ErrNotificationNotFound = errors.Wrap(ErrNotFound, "notification")
	ErrSeatShrink           = errors.New("total seats can only grow")

	// booking
	ErrNotBookable = errors.New("event is not open for booking")
	ErrUnknownSeat = errors.New("seat does not exist")
	ErrSeatTaken   = errors.New("seat already booked")

	// check-in
	ErrInvalidToken     = errors.New("invalid or expired ticket token")
	ErrTicketNotFound   = errors.Wrap(ErrNotFound, "ticket")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
)

// Validation wraps a human readable message so handlers answer 400.
func Validation(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}
