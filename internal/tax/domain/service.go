package domain

import (
	"context"
	"errors"

	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidLocation  = errors.New("invalid_location")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMaxNights = errors.New("invalid_max_nights")
	ErrNotFound         = errors.New("city_tax_not_found")
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, row *CityTaxDefault) error
	FindByLocation(ctx context.Context, db *gorm.DB, city, country string) (*CityTaxDefault, error)
	List(ctx context.Context, db *gorm.DB, country string) ([]CityTaxDefault, error)
}

// Resolver picks the city-tax rule for a property: its own rule first, then
// the (city, country) default, otherwise none.
type Resolver interface {
	Resolve(ctx context.Context, p *propertydomain.Property) (*pricingdomain.CityTaxRule, error)
}

type Service interface {
	Upsert(ctx context.Context, req UpsertRequest) (*CityTaxDefault, error)
	Get(ctx context.Context, city, country string) (*CityTaxDefault, error)
	List(ctx context.Context, country string) ([]CityTaxDefault, error)
}
