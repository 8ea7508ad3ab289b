package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrPropertyNotFound = errors.New("property not found")

	ErrRoomNotFound = errors.New("room not found")

	// ErrDuplicateCode is returned when an insert hits the unique booking_code index.
	ErrDuplicateCode = errors.New("booking code already exists")

	// ErrStatusChanged means a conditional status write found the booking in a different state.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrLockHeld = errors.New("room booking lock is held")
)
