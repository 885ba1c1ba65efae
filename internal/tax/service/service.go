package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return newService(p)
}

func NewResolver(p Params) domain.Resolver {
	return newService(p)
}

func newService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Resolve(ctx context.Context, p *propertydomain.Property) (*pricingdomain.CityTaxRule, error) {
	if p == nil {
		return nil, nil
	}
	if p.CityTaxCents != nil {
		return &pricingdomain.CityTaxRule{
			PerGuestPerNightCents: *p.CityTaxCents,
			MaxNights:             p.CityTaxMaxNights,
		}, nil
	}

	city, country := normalizeLocation(p.City, p.Country)
	if city == "" || country == "" {
		return nil, nil
	}
	row, err := s.repo.FindByLocation(ctx, s.db, city, country)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &pricingdomain.CityTaxRule{
		PerGuestPerNightCents: row.AmountCents,
		MaxNights:             row.MaxNights,
	}, nil
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.CityTaxDefault, error) {
	city, country := normalizeLocation(req.City, req.Country)
	if city == "" || len(country) != 2 {
		return nil, domain.ErrInvalidLocation
	}
	if req.AmountCents < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.MaxNights != nil && *req.MaxNights < 1 {
		return nil, domain.ErrInvalidMaxNights
	}

	now := s.clock.Now(ctx).UTC()
	row := &domain.CityTaxDefault{
		ID:          s.genID.Generate(),
		City:        city,
		Country:     country,
		AmountCents: req.AmountCents,
		MaxNights:   req.MaxNights,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Upsert(ctx, s.db, row); err != nil {
		return nil, err
	}

	s.log.Info("city tax default saved",
		zap.String("city", city),
		zap.String("country", country),
		zap.Int64("amount_cents", req.AmountCents))
	return s.Get(ctx, city, country)
}

func (s *Service) Get(ctx context.Context, city, country string) (*domain.CityTaxDefault, error) {
	city, country = normalizeLocation(city, country)
	row, err := s.repo.FindByLocation(ctx, s.db, city, country)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return row, nil
}

func (s *Service) List(ctx context.Context, country string) ([]domain.CityTaxDefault, error) {
	_, country = normalizeLocation("", country)
	return s.repo.List(ctx, s.db, country)
}

func normalizeLocation(city, country string) (string, string) {
	return strings.ToLower(strings.TrimSpace(city)), strings.ToUpper(strings.TrimSpace(country))
}
