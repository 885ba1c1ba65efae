package domain

import (
	"fmt"

	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
)

// ValidateRange rejects empty, inverted and overlong stays.
func ValidateRange(r calendar.Range, maxNights int) error {
	if err := r.Validate(); err != nil {
		return invalidRange("check-out must be after check-in")
	}
	if maxNights <= 0 {
		maxNights = DefaultMaxNights
	}
	if r.Nights() > maxNights {
		return invalidRange(fmt.Sprintf("stays are limited to %d nights", maxNights))
	}
	return nil
}

// ValidateAvailability checks every night of [CheckIn, CheckOut) and the
// minimum stay in force on the check-in night.
func ValidateAvailability(rates ratesdomain.RateMap, r calendar.Range, maxNights int) error {
	if err := ValidateRange(r, maxNights); err != nil {
		return err
	}

	for _, night := range r.Dates() {
		day, ok := rates.Get(night)
		if !ok {
			return missingRate(night)
		}
		if !day.Available {
			return nightUnavailable(night)
		}
	}

	arrival, _ := rates.Get(r.CheckIn)
	minStay := arrival.MinStay
	if minStay < 1 {
		minStay = 1
	}
	if r.Nights() < minStay {
		return belowMinimumStay(minStay, r.CheckIn)
	}
	return nil
}
