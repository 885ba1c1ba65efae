package domain

import (
	"errors"
	"fmt"

	"github.com/luciodale/booking-portal-sub002/internal/calendar"
)

var (
	ErrInvalidRange         = errors.New("invalid_range")
	ErrNightUnavailable     = errors.New("night_unavailable")
	ErrBelowMinimumStay     = errors.New("below_minimum_stay")
	ErrDateRangeUnavailable = errors.New("date_range_unavailable")
	ErrMissingRateData      = errors.New("missing_rate_data")
	ErrInvalidGuests        = errors.New("invalid_guests")
	ErrInvalidExtras        = errors.New("invalid_extras")
	ErrInvalidCityTaxRule   = errors.New("invalid_city_tax_rule")
)

// RangeError is a user-correctable rejection of a requested stay. Reason is
// safe to show to a guest.
type RangeError struct {
	Code   error
	Reason string
	Night  calendar.Date
}

func (e *RangeError) Error() string {
	if e.Reason == "" {
		return e.Code.Error()
	}
	return e.Reason
}

// Unwrap lets a blocked night also match ErrDateRangeUnavailable.
func (e *RangeError) Unwrap() []error {
	if e.Code == ErrNightUnavailable {
		return []error{ErrNightUnavailable, ErrDateRangeUnavailable}
	}
	return []error{e.Code}
}

func invalidRange(reason string) error {
	return &RangeError{Code: ErrInvalidRange, Reason: reason}
}

func nightUnavailable(d calendar.Date) error {
	return &RangeError{
		Code:   ErrNightUnavailable,
		Reason: fmt.Sprintf("the night of %s is not available", d),
		Night:  d,
	}
}

func missingRate(d calendar.Date) error {
	return &RangeError{
		Code:   ErrMissingRateData,
		Reason: fmt.Sprintf("pricing is unavailable for %s", d),
		Night:  d,
	}
}

func belowMinimumStay(minStay int, checkIn calendar.Date) error {
	unit := "nights"
	if minStay == 1 {
		unit = "night"
	}
	return &RangeError{
		Code:   ErrBelowMinimumStay,
		Reason: fmt.Sprintf("minimum stay is %d %s", minStay, unit),
		Night:  checkIn,
	}
}
