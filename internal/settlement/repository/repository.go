package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 100

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.FlagRepository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, f *domain.Flag) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}, {Name: "kind"}},
			DoNothing: true,
		}).
		Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, limit int) ([]domain.Flag, error) {
	if db == nil {
		db = r.db
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var out []domain.Flag
	err := db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Resolve(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.WithContext(ctx).
		Model(&domain.Flag{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", at)
	return res.RowsAffected, res.Error
}
