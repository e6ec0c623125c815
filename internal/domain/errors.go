package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNoSeats          = errors.New("no available seats")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrConflict         = errors.New("already exists")
	ErrEmptyBooking     = errors.New("booking must contain at least one ticket")
	ErrValidation       = errors.New("validation failed")
)
