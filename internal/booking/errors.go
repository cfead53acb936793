package booking

import "errors"

var (
	// ErrNotFound is returned when an update targets an id that is not in
	// the collection. Deletes of missing ids stay silent.
	ErrNotFound = errors.New("booking: not found")

	// ErrMissingName is returned when a service or professional has no name.
	ErrMissingName = errors.New("booking: name is required")

	// ErrInvalidDuration is returned for non-positive durations.
	ErrInvalidDuration = errors.New("booking: duration must be positive")

	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("booking: price must not be negative")

	// ErrInvalidSchedule is returned when a working-hours window or break is
	// malformed (start >= end, break outside the window, unparseable time).
	ErrInvalidSchedule = errors.New("booking: invalid schedule")

	// ErrInvalidTime is returned for time-of-day values not in HH:MM form.
	ErrInvalidTime = errors.New("booking: invalid time of day")

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("booking: invalid date")

	// ErrInvalidStatus is returned for unknown appointment statuses.
	ErrInvalidStatus = errors.New("booking: invalid status")
)
