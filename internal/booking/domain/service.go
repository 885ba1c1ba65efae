package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("booking_not_found")
	ErrInvalidEmail     = errors.New("invalid_guest_email")
	ErrInvalidBooking   = errors.New("invalid_booking")
	ErrDatesTaken       = errors.New("dates_unavailable")
	ErrNotCancellable   = errors.New("booking_not_cancellable")
	ErrReceiptNotReady  = errors.New("receipt_not_available")
	ErrDuplicateSession = errors.New("duplicate_provider_session")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, b *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByProviderSession(ctx context.Context, db *gorm.DB, provider, providerSessionID string) (*Booking, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, statuses []Status) ([]Booking, error)
	// HasConfirmedOverlap reports a confirmed booking of the property whose
	// stay intersects r, ignoring excludeID.
	HasConfirmedOverlap(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, r calendar.Range, excludeID snowflake.ID) (bool, error)
	// Confirm moves a pending booking to confirmed. It affects zero rows when
	// the booking is no longer pending.
	Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID, c Confirmation) (int64, error)
	// Cancel moves a booking in one of from to cancelled.
	Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, from []Status, c Cancellation) (int64, error)
}

type ListRequest struct {
	PropertyID snowflake.ID
	Statuses   []Status
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Booking, error)
	ListByProperty(ctx context.Context, req ListRequest) ([]Booking, error)
	// Cancel is the broker/admin path. Cancelling a cancelled booking
	// succeeds without change.
	Cancel(ctx context.Context, id snowflake.ID, reason string) (*Booking, error)
	Today(ctx context.Context) calendar.Date
}
