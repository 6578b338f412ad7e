package service

import "errors"

var (
	// ErrInvalidDriverID is returned when a driver id is missing or unknown.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidVehicleID is returned when a vehicle id is missing or unknown.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidTripID is returned when a trip id is missing or unknown.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverName is returned when a driver name is empty.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidCity is returned when a loading or unloading city is empty.
	ErrInvalidCity = errors.New("invalid city")

	// ErrInvalidDistance is returned when a trip distance is not positive.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidLoadingCount is returned when a loading count is negative.
	ErrInvalidLoadingCount = errors.New("invalid loading count")

	// ErrInvalidRate is returned when a rate card contains a negative rate.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrInvalidDowntimeHours is returned when downtime hours are not positive.
	ErrInvalidDowntimeHours = errors.New("invalid downtime hours")

	// ErrInvalidDowntimeKind is returned when a downtime kind is unknown.
	ErrInvalidDowntimeKind = errors.New("invalid downtime kind")

	// ErrInvalidPaymentAmount is returned when a payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrAmountExceedsBalance is returned when a payment is larger than the
	// trip's outstanding balance.
	ErrAmountExceedsBalance = errors.New("payment amount exceeds outstanding balance")

	// ErrInvalidTruckNumber is returned when a truck number is empty.
	ErrInvalidTruckNumber = errors.New("invalid truck number")

	// ErrAccessDenied is returned when an account's role is insufficient for
	// the requested operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrLastAdmin is returned when removing or demoting the only admin.
	ErrLastAdmin = errors.New("cannot remove the last admin")
)
