package service

import "errors"

var (
	// ErrInvalidUserID is returned when the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidVehicleID is returned when the vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidTripID is returned when the trip ID is empty or malformed.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidLocation is returned when coordinates are out of range or not finite.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidMetrics is returned when a completion metric is negative or not finite.
	ErrInvalidMetrics = errors.New("invalid trip metrics")

	// ErrInvalidBehavior is returned when a driving-behavior counter is negative.
	ErrInvalidBehavior = errors.New("invalid driving behavior counters")
)
