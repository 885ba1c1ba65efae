package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	"gorm.io/gorm"
)

// Ack is returned to the provider once a delivery has been handled.
type Ack struct {
	EventID string `json:"event_id,omitempty"`
	Outcome string `json:"outcome"`
}

type Service interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (Ack, error)
}

type CheckoutRequest struct {
	Provider    string
	PropertyID  snowflake.ID
	Range       calendar.Range
	Guests      int
	ExtrasCents int64
	GuestEmail  string
	GuestName   string
	SuccessURL  string
	CancelURL   string
}

type CheckoutResult struct {
	BookingID         snowflake.ID        `json:"booking_id"`
	Provider          string              `json:"provider"`
	ProviderSessionID string              `json:"provider_session_id"`
	URL               string              `json:"url"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	Quote             pricingdomain.Quote `json:"quote"`
}

type CheckoutService interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

type EventRepository interface {
	// Insert reports false when the event was already recorded.
	Insert(ctx context.Context, db *gorm.DB, rec *EventRecord) (bool, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, provider, providerEventID, outcome string, at time.Time) error
	FindByProviderEventID(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
}

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidCurrency  = errors.New("invalid_currency")
	ErrInvalidConfig    = errors.New("invalid_config")
	ErrInvalidURL       = errors.New("invalid_redirect_url")
	ErrCheckoutFailed   = errors.New("checkout_session_failed")
	ErrCheckoutDisabled = errors.New("checkout_not_configured")
)
