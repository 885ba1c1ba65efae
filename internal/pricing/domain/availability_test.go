package domain_test

import (
	"errors"
	"testing"

	"github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAvailabilityOK(t *testing.T) {
	assert.NoError(t, domain.ValidateAvailability(juneRates(), stay("2024-06-01", "2024-06-03"), 365))
}

func TestValidateAvailabilityBlockedNight(t *testing.T) {
	rates := juneRates()
	rates["2024-06-02"] = ratesdomain.RateDay{Price: 12000, MinStay: 1, Available: false}

	err := domain.ValidateAvailability(rates, stay("2024-06-01", "2024-06-03"), 365)
	require.ErrorIs(t, err, domain.ErrNightUnavailable)

	var rangeErr *domain.RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "2024-06-02", rangeErr.Night.String())
}

func TestValidateAvailabilityIgnoresCheckoutNight(t *testing.T) {
	rates := juneRates()
	rates["2024-06-03"] = ratesdomain.RateDay{Price: 11000, MinStay: 1, Available: false}

	assert.NoError(t, domain.ValidateAvailability(rates, stay("2024-06-01", "2024-06-03"), 365))
}

func TestValidateAvailabilityMinimumStay(t *testing.T) {
	rates := juneRates()
	rates["2024-06-01"] = ratesdomain.RateDay{Price: 10000, MinStay: 3, Available: true}
	rates["2024-06-04"] = ratesdomain.RateDay{Price: 9000, MinStay: 1, Available: true}

	err := domain.ValidateAvailability(rates, stay("2024-06-01", "2024-06-03"), 365)
	assert.ErrorIs(t, err, domain.ErrBelowMinimumStay)
	assert.EqualError(t, err, "minimum stay is 3 nights")

	assert.NoError(t, domain.ValidateAvailability(rates, stay("2024-06-01", "2024-06-04"), 365))
}

func TestValidateAvailabilityMinimumStayReadsArrivalNight(t *testing.T) {
	rates := juneRates()
	rates["2024-06-02"] = ratesdomain.RateDay{Price: 12000, MinStay: 5, Available: true}

	assert.NoError(t, domain.ValidateAvailability(rates, stay("2024-06-01", "2024-06-03"), 365))
}

func TestValidateAvailabilityInvalidRange(t *testing.T) {
	err := domain.ValidateAvailability(juneRates(), stay("2024-06-03", "2024-06-01"), 365)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	err = domain.ValidateAvailability(juneRates(), stay("2024-06-01", "2024-06-03"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	assert.EqualError(t, err, "stays are limited to 1 nights")
}

func TestValidateAvailabilityMissingData(t *testing.T) {
	err := domain.ValidateAvailability(juneRates(), stay("2024-06-02", "2024-06-05"), 365)
	assert.ErrorIs(t, err, domain.ErrMissingRateData)
	assert.NotErrorIs(t, err, domain.ErrNightUnavailable)
}
