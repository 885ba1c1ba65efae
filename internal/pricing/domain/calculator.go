package domain

import (
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
)

// Calculate prices a stay in integer minor units. It does not apply the
// minimum-stay rule; run ValidateAvailability first for a bookable quote.
func Calculate(in Input) (Quote, error) {
	if err := in.Range.Validate(); err != nil {
		return Quote{}, invalidRange("check-out must be after check-in")
	}
	if in.Guests < 1 {
		return Quote{}, ErrInvalidGuests
	}
	if in.ExtrasCents < 0 {
		return Quote{}, ErrInvalidExtras
	}

	nights := in.Range.Nights()
	nightly := make([]NightlyRate, 0, nights)
	var base int64
	for _, night := range in.Range.Dates() {
		day, ok := in.Rates.Get(night)
		if !ok {
			return Quote{}, missingRate(night)
		}
		if !day.Available {
			return Quote{}, nightUnavailable(night)
		}
		nightly = append(nightly, NightlyRate{Date: night, PriceCents: day.Price})
		base += day.Price
	}

	cityTax, err := CityTax(in.CityTax, nights, in.Guests)
	if err != nil {
		return Quote{}, err
	}

	split, err := feedomain.SplitRevenue(base, in.FeePercent)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		CheckIn:             in.Range.CheckIn,
		CheckOut:            in.Range.CheckOut,
		Nights:              nights,
		Guests:              in.Guests,
		Nightly:             nightly,
		BaseTotalCents:      base,
		ExtrasCents:         in.ExtrasCents,
		CityTaxCents:        cityTax,
		FeePercent:          split.FeePercent,
		PlatformFeeCents:    split.PlatformFeeCents,
		BrokerNetCents:      split.BrokerNetCents,
		WithholdingTaxCents: feedomain.WithholdingTax(base, in.WithholdingPercent),
		TotalCents:          base + in.ExtrasCents + cityTax,
		Currency:            in.Currency,
	}, nil
}

// CityTax is min(nights, maxNights) * perGuestPerNight * guests, or zero when
// no rule applies.
func CityTax(rule *CityTaxRule, nights, guests int) (int64, error) {
	if rule == nil {
		return 0, nil
	}
	if rule.PerGuestPerNightCents < 0 {
		return 0, ErrInvalidCityTaxRule
	}
	taxed := nights
	if rule.MaxNights != nil {
		if *rule.MaxNights < 1 {
			return 0, ErrInvalidCityTaxRule
		}
		taxed = min(nights, *rule.MaxNights)
	}
	return int64(taxed) * rule.PerGuestPerNightCents * int64(guests), nil
}
