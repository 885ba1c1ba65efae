package domain

import (
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
)

// DefaultMaxNights bounds a single stay when no limit is configured.
const DefaultMaxNights = 365

// CityTaxRule charges a flat amount per guest per night, capped at MaxNights
// when set.
type CityTaxRule struct {
	PerGuestPerNightCents int64 `json:"per_guest_per_night_cents"`
	MaxNights             *int  `json:"max_nights,omitempty"`
}

// NightlyRate is one line of the nightly breakdown.
type NightlyRate struct {
	Date       calendar.Date `json:"date"`
	PriceCents int64         `json:"price_cents"`
}

// Input carries everything a price depends on. Fee and withholding percents
// are resolved by the caller so Calculate stays pure.
type Input struct {
	Rates              ratesdomain.RateMap
	Range              calendar.Range
	Guests             int
	CityTax            *CityTaxRule
	ExtrasCents        int64
	Currency           string
	FeePercent         int
	WithholdingPercent int
}

// Quote is a derived breakdown; it is never persisted as such.
// TotalCents = BaseTotalCents + ExtrasCents + CityTaxCents. PlatformFeeCents,
// BrokerNetCents and WithholdingTaxCents split BaseTotalCents and are not
// charged to the guest.
type Quote struct {
	QuoteRef            string        `json:"quote_ref,omitempty"`
	CheckIn             calendar.Date `json:"check_in"`
	CheckOut            calendar.Date `json:"check_out"`
	Nights              int           `json:"nights"`
	Guests              int           `json:"guests"`
	Nightly             []NightlyRate `json:"nightly"`
	BaseTotalCents      int64         `json:"base_total_cents"`
	ExtrasCents         int64         `json:"extras_cents"`
	CityTaxCents        int64         `json:"city_tax_cents"`
	FeePercent          int           `json:"fee_percent"`
	PlatformFeeCents    int64         `json:"platform_fee_cents"`
	BrokerNetCents      int64         `json:"broker_net_cents"`
	WithholdingTaxCents int64         `json:"withholding_tax_cents"`
	TotalCents          int64         `json:"total_cents"`
	Currency            string        `json:"currency"`
}

func (q Quote) Range() calendar.Range {
	return calendar.Range{CheckIn: q.CheckIn, CheckOut: q.CheckOut}
}
