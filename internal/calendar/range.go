package calendar

import "errors"

var ErrInvalidRange = errors.New("invalid_range")

// Range is the half-open stay interval [CheckIn, CheckOut). The checkout day
// is not a night of the stay.
type Range struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

func NewRange(checkIn, checkOut Date) (Range, error) {
	r := Range{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (r Range) Nights() int {
	return r.CheckIn.DaysUntil(r.CheckOut)
}

// Dates lists every night of the stay, checkout excluded.
func (r Range) Dates() []Date {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	out := make([]Date, 0, n)
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func (r Range) Overlaps(o Range) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}
