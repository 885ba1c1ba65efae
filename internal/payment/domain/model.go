package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord is the audit row for every verified webhook delivery. The
// (provider, provider_event_id) pair is unique, so redeliveries do not add
// rows.
type EventRecord struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Provider          string         `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:ux_payment_events_provider_event"`
	ProviderEventID   string         `json:"provider_event_id" gorm:"type:varchar(255);not null;uniqueIndex:ux_payment_events_provider_event"`
	EventType         string         `json:"event_type" gorm:"type:varchar(64);not null"`
	ProviderSessionID string         `json:"provider_session_id" gorm:"type:varchar(255);index"`
	Payload           datatypes.JSON `json:"payload" gorm:"not null"`
	Outcome           string         `json:"outcome" gorm:"type:varchar(40)"`
	ReceivedAt        time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt       *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

const (
	EventTypeCheckoutCompleted     = "checkout_completed"
	EventTypeAsyncPaymentSucceeded = "async_payment_succeeded"
	EventTypeAsyncPaymentFailed    = "async_payment_failed"
	EventTypeCheckoutExpired       = "checkout_expired"
)

const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// PaymentEvent is the canonical payment event parsed by adapters.
type PaymentEvent struct {
	Provider          string
	ProviderEventID   string
	Type              string
	ProviderSessionID string
	PaymentIntentID   string
	PaymentStatus     string
	ClientReferenceID string
	Amount            int64
	Currency          string
	OccurredAt        time.Time
	RawPayload        []byte
}

// Paid reports whether the event carries settled funds.
func (e *PaymentEvent) Paid() bool {
	switch e.Type {
	case EventTypeAsyncPaymentSucceeded:
		return true
	case EventTypeCheckoutCompleted:
		return e.PaymentStatus == PaymentStatusPaid || e.PaymentStatus == PaymentStatusNoPaymentRequired
	default:
		return false
	}
}

// CheckoutSessionInput is what an adapter needs to open a hosted checkout.
type CheckoutSessionInput struct {
	Reference     string
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// ProviderCheckoutSession is returned by the adapter.
type ProviderCheckoutSession struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
