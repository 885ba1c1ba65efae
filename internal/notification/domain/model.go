package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TaskTypeBookingConfirmed is the asynq task carrying a Notice.
const TaskTypeBookingConfirmed = "booking:confirmed"

var (
	ErrInvalidNotice     = errors.New("invalid_notice")
	ErrMissingWebhookURL = errors.New("missing_webhook_url")
	ErrDeliveryRejected  = errors.New("notice_delivery_rejected")
)

// Notice describes a freshly confirmed booking.
type Notice struct {
	BookingID        snowflake.ID `json:"booking_id"`
	PropertyID       snowflake.ID `json:"property_id"`
	PropertyName     string       `json:"property_name,omitempty"`
	BrokerID         snowflake.ID `json:"broker_id"`
	GuestEmail       string       `json:"guest_email"`
	GuestName        string       `json:"guest_name,omitempty"`
	Guests           int          `json:"guests"`
	CheckIn          string       `json:"check_in"`
	CheckOut         string       `json:"check_out"`
	Nights           int          `json:"nights"`
	TotalCents       int64        `json:"total_cents"`
	PlatformFeeCents int64        `json:"platform_fee_cents"`
	BrokerNetCents   int64        `json:"broker_net_cents"`
	Currency         string       `json:"currency"`
	ConfirmedAt      time.Time    `json:"confirmed_at"`
}

func (n Notice) Validate() error {
	if n.BookingID == 0 || n.GuestEmail == "" {
		return ErrInvalidNotice
	}
	return nil
}

// Notifier dispatches a confirmation notice. Callers treat failures as
// advisory.
type Notifier interface {
	NotifyConfirmed(ctx context.Context, n Notice) error
}

// Sender performs the actual delivery of a notice to its destination.
type Sender interface {
	Send(ctx context.Context, n Notice) error
}

// Noop drops every notice.
type Noop struct{}

func (Noop) NotifyConfirmed(context.Context, Notice) error { return nil }
