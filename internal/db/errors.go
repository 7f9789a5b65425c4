package db

import "errors"

var (
	// ErrTripNotFound is returned when the referenced trip does not exist
	// for the given user and vehicle.
	ErrTripNotFound = errors.New("trip not found")

	// ErrActiveTripExists is returned when a start would violate the
	// at-most-one-active-trip invariant for a vehicle.
	ErrActiveTripExists = errors.New("vehicle already has a trip in progress")

	// ErrTripNotInProgress is returned when completing a trip that is
	// already completed.
	ErrTripNotInProgress = errors.New("trip is not in progress")

	// ErrVehicleNotFound is returned when a requested vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrNotificationNotFound is returned when a requested notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrStoreUnavailable wraps transient I/O failures from the store.
	ErrStoreUnavailable = errors.New("document store unavailable")
)
