package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Outcome string

const (
	OutcomeConfirmed         Outcome = "confirmed"
	OutcomeAlreadyConfirmed  Outcome = "already_confirmed"
	OutcomeConflict          Outcome = "conflict"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeIgnored           Outcome = "ignored"
	OutcomeUnpaid            Outcome = "unpaid"
	OutcomeAfterCancellation Outcome = "after_cancellation"
)

func (o Outcome) String() string { return string(o) }

// Notification is the advisory half of a settlement. Its failure is logged
// and reported but never undoes the confirmation.
type Notification struct {
	Attempted bool  `json:"attempted"`
	Err       error `json:"-"`
}

func (n Notification) Sent() bool { return n.Attempted && n.Err == nil }

// Result separates what was durably recorded from what was merely attempted.
type Result struct {
	Outcome      Outcome          `json:"outcome"`
	BookingID    snowflake.ID     `json:"booking_id,omitempty"`
	Split        *feedomain.Split `json:"split,omitempty"`
	Notification Notification     `json:"notification"`
}

const (
	FlagKindOverlapConflict    = "overlap_conflict"
	FlagKindPaymentAfterCancel = "payment_after_cancellation"
)

// Flag is an operator work item: money was taken for a booking that could not
// be confirmed and must be refunded by hand.
type Flag struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	BookingID         snowflake.ID   `json:"booking_id" gorm:"not null;uniqueIndex:ux_settlement_flags_booking_kind"`
	PropertyID        snowflake.ID   `json:"property_id" gorm:"not null;index"`
	Kind              string         `json:"kind" gorm:"type:varchar(40);not null;uniqueIndex:ux_settlement_flags_booking_kind"`
	Provider          string         `json:"provider" gorm:"type:varchar(50);not null"`
	ProviderEventID   string         `json:"provider_event_id" gorm:"type:varchar(255)"`
	ProviderSessionID string         `json:"provider_session_id" gorm:"type:varchar(255)"`
	PaymentIntentID   string         `json:"payment_intent_id,omitempty" gorm:"type:varchar(255)"`
	AmountCents       int64          `json:"amount_cents" gorm:"not null"`
	Currency          string         `json:"currency" gorm:"type:varchar(3)"`
	Detail            datatypes.JSON `json:"detail,omitempty"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty"`
}

func (Flag) TableName() string { return "settlement_flags" }

var (
	ErrInvalidEvent = errors.New("invalid_settlement_event")
	ErrFlagNotFound = errors.New("settlement_flag_not_found")
)

// Handler applies a verified payment event to its booking. A nil error means
// the provider may be acknowledged.
type Handler interface {
	Settle(ctx context.Context, ev *paymentdomain.PaymentEvent) (*Result, error)
}

type FlagRepository interface {
	// Insert reports false when the booking already has a flag of that kind.
	Insert(ctx context.Context, db *gorm.DB, f *Flag) (bool, error)
	ListOpen(ctx context.Context, db *gorm.DB, limit int) ([]Flag, error)
	Resolve(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)
}

type FlagService interface {
	ListOpen(ctx context.Context, limit int) ([]Flag, error)
	Resolve(ctx context.Context, id snowflake.ID) error
}
