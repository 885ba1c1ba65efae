package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

// Upsert keeps one row per broker; a second write replaces the percent.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, override *domain.FeeOverride) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "broker_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fee_percent", "updated_at"}),
		}).
		Create(override).Error
}

func (r *repo) FindByBrokerID(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) (*domain.FeeOverride, error) {
	if db == nil {
		db = r.db
	}
	var override domain.FeeOverride
	err := db.WithContext(ctx).
		Where("broker_id = ?", brokerID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

func (r *repo) DeleteByBrokerID(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).
		Where("broker_id = ?", brokerID).
		Delete(&domain.FeeOverride{})
	return res.RowsAffected, res.Error
}
