package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP statuses;
// repository.ErrNotFound and friends pass through unchanged.
var (
	ErrCartEmpty             = errors.New("cart is empty")
	ErrSpotTaken             = errors.New("spot is already booked for that time")
	ErrUnknownSpot           = errors.New("spot does not exist at this location")
	ErrLocationFull          = errors.New("location is fully booked for that time")
	ErrOutsideOperatingHours = errors.New("booking is outside operating hours")
	ErrInvalidDate           = errors.New("booking_date must be YYYY-MM-DD")
	ErrInvalidTransition     = errors.New("status change not allowed")
	ErrInvalidDiscountValue  = errors.New("invalid discount value")
	ErrInvalidParentComment  = errors.New("replies can only target a top-level comment of the same post")
)
