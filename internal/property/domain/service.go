package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("property_not_found")
	ErrInvalidBroker      = errors.New("invalid_broker")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidProviderID  = errors.New("invalid_provider_property_id")
	ErrInvalidLocation    = errors.New("invalid_location")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidGuestLimit  = errors.New("invalid_max_guests")
	ErrInvalidCityTaxRule = errors.New("invalid_city_tax_rule")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Property) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Property, error)
	// LockByID takes a row lock on the property for the life of the
	// transaction in db. It serializes confirmations for one property.
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Property, error)
	Get(ctx context.Context, id snowflake.ID) (*Property, error)
}
