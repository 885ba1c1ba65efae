package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Property) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	if db == nil {
		db = r.db
	}
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Property, error) {
	if db == nil {
		db = r.db
	}
	return first(db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	if db == nil {
		db = r.db
	}
	q := db.WithContext(ctx)
	// sqlite has no row locks; its writer lock already serializes the tx.
	if db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return first(q.Where("id = ?", id))
}

func first(q *gorm.DB) (*domain.Property, error) {
	var p domain.Property
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
