package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *domain.Booking) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(b).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	if db == nil {
		db = r.db
	}
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByProviderSession(ctx context.Context, db *gorm.DB, provider, providerSessionID string) (*domain.Booking, error) {
	if db == nil {
		db = r.db
	}
	return first(db.WithContext(ctx).
		Where("provider = ? AND provider_session_id = ?", provider, providerSessionID))
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, statuses []domain.Status) ([]domain.Booking, error) {
	if db == nil {
		db = r.db
	}
	q := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in ASC, id ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var out []domain.Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) HasConfirmedOverlap(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, stay calendar.Range, excludeID snowflake.ID) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("property_id = ? AND status = ? AND id <> ?", propertyID, domain.StatusConfirmed, excludeID).
		Where("check_in < ? AND check_out > ?", stay.CheckOut.String(), stay.CheckIn.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID, c domain.Confirmation) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":             domain.StatusConfirmed,
			"fee_percent":        c.FeePercent,
			"platform_fee_cents": c.PlatformFeeCents,
			"broker_net_cents":   c.BrokerNetCents,
			"payment_intent_id":  c.PaymentIntentID,
			"confirmed_at":       c.ConfirmedAt,
			"updated_at":         c.ConfirmedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, from []domain.Status, c domain.Cancellation) (int64, error) {
	if db == nil {
		db = r.db
	}
	if len(from) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":        domain.StatusCancelled,
			"cancel_reason": c.Reason,
			"needs_refund":  c.NeedsRefund,
			"cancelled_at":  c.CancelledAt,
			"updated_at":    c.CancelledAt,
		})
	return res.RowsAffected, res.Error
}

func first(q *gorm.DB) (*domain.Booking, error) {
	var b domain.Booking
	if err := q.First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
