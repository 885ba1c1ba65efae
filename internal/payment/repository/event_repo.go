package repository

import (
	"context"
	"errors"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Insert(ctx context.Context, db *gorm.DB, rec *domain.EventRecord) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *eventRepo) MarkProcessed(ctx context.Context, db *gorm.DB, provider, providerEventID, outcome string, at time.Time) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Model(&domain.EventRecord{}).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		Updates(map[string]any{
			"outcome":      outcome,
			"processed_at": at,
		}).Error
}

func (r *eventRepo) FindByProviderEventID(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	if db == nil {
		db = r.db
	}
	var rec domain.EventRecord
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
