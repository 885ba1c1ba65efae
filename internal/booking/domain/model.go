package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	// StatusCompleted is never stored. It is how a confirmed stay whose
	// checkout day has passed is displayed.
	StatusCompleted Status = "completed"
)

const (
	CancelReasonBroker             = "broker_cancelled"
	CancelReasonSettlementConflict = "settlement_conflict"
)

// Booking is one checkout attempt for a property. Dates are stored as
// YYYY-MM-DD so range comparisons are plain string comparisons on every
// dialect. Money is integer minor units.
type Booking struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PropertyID snowflake.ID `json:"property_id" gorm:"not null;index:ix_bookings_property_stay,priority:1"`
	BrokerID   snowflake.ID `json:"broker_id" gorm:"not null;index"`
	GuestEmail string       `json:"guest_email" gorm:"type:varchar(255);not null"`
	GuestName  string       `json:"guest_name" gorm:"type:varchar(200)"`
	Guests     int          `json:"guests" gorm:"not null"`
	CheckIn    string       `json:"check_in" gorm:"type:varchar(10);not null;index:ix_bookings_property_stay,priority:3"`
	CheckOut   string       `json:"check_out" gorm:"type:varchar(10);not null"`
	Nights     int          `json:"nights" gorm:"not null"`
	Status     Status       `json:"status" gorm:"type:varchar(20);not null;index:ix_bookings_property_stay,priority:2"`

	BaseTotalCents      int64  `json:"base_total_cents" gorm:"not null"`
	ExtrasCents         int64  `json:"extras_cents" gorm:"not null"`
	CityTaxCents        int64  `json:"city_tax_cents" gorm:"not null"`
	TotalCents          int64  `json:"total_cents" gorm:"not null"`
	WithholdingTaxCents int64  `json:"withholding_tax_cents" gorm:"not null"`
	Currency            string `json:"currency" gorm:"type:varchar(3);not null"`
	QuoteRef            string `json:"quote_ref" gorm:"type:varchar(26)"`

	// Fee split resolved when the booking is confirmed, not when quoted.
	FeePercent       *int   `json:"fee_percent,omitempty"`
	PlatformFeeCents *int64 `json:"platform_fee_cents,omitempty"`
	BrokerNetCents   *int64 `json:"broker_net_cents,omitempty"`

	Provider          string `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:ux_bookings_provider_session"`
	ProviderSessionID string `json:"provider_session_id" gorm:"type:varchar(255);not null;uniqueIndex:ux_bookings_provider_session"`
	PaymentIntentID   string `json:"payment_intent_id,omitempty" gorm:"type:varchar(255)"`

	CancelReason string `json:"cancel_reason,omitempty" gorm:"type:varchar(50)"`
	NeedsRefund  bool   `json:"needs_refund" gorm:"not null;default:false"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) Range() (calendar.Range, error) {
	in, err := calendar.Parse(b.CheckIn)
	if err != nil {
		return calendar.Range{}, err
	}
	out, err := calendar.Parse(b.CheckOut)
	if err != nil {
		return calendar.Range{}, err
	}
	return calendar.NewRange(in, out)
}

// DisplayStatus derives completed for confirmed stays that have ended.
func (b *Booking) DisplayStatus(today calendar.Date) Status {
	if b.Status != StatusConfirmed {
		return b.Status
	}
	out, err := calendar.Parse(b.CheckOut)
	if err != nil {
		return b.Status
	}
	if !today.Before(out) {
		return StatusCompleted
	}
	return b.Status
}

// Confirmation is written in the same statement that moves pending to
// confirmed.
type Confirmation struct {
	FeePercent       int
	PlatformFeeCents int64
	BrokerNetCents   int64
	PaymentIntentID  string
	ConfirmedAt      time.Time
}

type Cancellation struct {
	Reason      string
	NeedsRefund bool
	CancelledAt time.Time
}
