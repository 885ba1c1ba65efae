package repository

import (
	"context"
	"errors"

	"github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, db *gorm.DB, row *domain.CityTaxDefault) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "city"}, {Name: "country"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount_cents", "max_nights", "updated_at"}),
		}).
		Create(row).Error
}

func (r *repository) FindByLocation(ctx context.Context, db *gorm.DB, city, country string) (*domain.CityTaxDefault, error) {
	if db == nil {
		db = r.db
	}
	var row domain.CityTaxDefault
	err := db.WithContext(ctx).
		Where("city = ? AND country = ?", city, country).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, country string) ([]domain.CityTaxDefault, error) {
	if db == nil {
		db = r.db
	}
	q := db.WithContext(ctx).Order("country ASC, city ASC")
	if country != "" {
		q = q.Where("country = ?", country)
	}
	var rows []domain.CityTaxDefault
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
