package domain

import (
	"errors"
	"fmt"

	"github.com/luciodale/booking-portal-sub002/internal/calendar"
)

var (
	// ErrUpstreamUnavailable covers an unreachable PMS as well as a response
	// that fails schema validation. Callers may retry.
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
	ErrInvalidPropertyID   = errors.New("invalid_property_id")
)

// RateDay is one night as reported by the PMS. Price is in minor units.
type RateDay struct {
	Price     int64 `json:"price"`
	MinStay   int   `json:"min_stay"`
	Available bool  `json:"available"`
}

// RateMap is keyed by ISO date (YYYY-MM-DD). A missing key is a data gap,
// not a blocked night.
type RateMap map[string]RateDay

func (m RateMap) Get(d calendar.Date) (RateDay, bool) {
	day, ok := m[d.String()]
	return day, ok
}

// Request identifies a PMS fetch. End is inclusive, matching the PMS API.
type Request struct {
	ProviderPropertyID string
	Start              calendar.Date
	End                calendar.Date
}

func (r Request) CacheKey() string {
	return fmt.Sprintf("rates:%s:%s:%s", r.ProviderPropertyID, r.Start, r.End)
}

// UpstreamError wraps the reason a fetch failed while still matching
// ErrUpstreamUnavailable.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Reason)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstreamUnavailable, e.Err}
	}
	return []error{ErrUpstreamUnavailable}
}

func Upstream(reason string, err error) error {
	return &UpstreamError{Reason: reason, Err: err}
}
