package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"github.com/luciodale/booking-portal-sub002/pkg/db"
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
	Cfg   config.Config
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            domain.Repository
	clock           clock.Clock
	defaultCurrency string
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("property.service"),
		genID:           p.GenID,
		repo:            p.Repo,
		clock:           p.Clock,
		defaultCurrency: p.Cfg.Booking.Currency,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Property, error) {
	if req.BrokerID == 0 {
		return nil, domain.ErrInvalidBroker
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	providerID := strings.TrimSpace(req.ProviderPropertyID)
	if providerID == "" {
		return nil, domain.ErrInvalidProviderID
	}
	city := strings.TrimSpace(req.City)
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if city == "" || len(country) != 2 {
		return nil, domain.ErrInvalidLocation
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}
	if req.MaxGuests < 0 {
		return nil, domain.ErrInvalidGuestLimit
	}
	if req.CityTaxCents != nil && *req.CityTaxCents < 0 {
		return nil, domain.ErrInvalidCityTaxRule
	}
	if req.CityTaxMaxNights != nil && *req.CityTaxMaxNights < 1 {
		return nil, domain.ErrInvalidCityTaxRule
	}

	now := s.clock.Now(ctx).UTC()
	p := &domain.Property{
		ID:                 s.genID.Generate(),
		BrokerID:           req.BrokerID,
		Name:               name,
		Slug:               slug.Make(name),
		ProviderPropertyID: providerID,
		City:               city,
		Country:            country,
		Currency:           currency,
		MaxGuests:          req.MaxGuests,
		CityTaxCents:       req.CityTaxCents,
		CityTaxMaxNights:   req.CityTaxMaxNights,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.repo.Insert(ctx, s.db, p)
	if db.IsUniqueViolation(err) {
		// two listings with the same name: disambiguate with the id
		p.Slug = fmt.Sprintf("%s-%s", p.Slug, p.ID.Base36())
		err = s.repo.Insert(ctx, s.db, p)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("property registered",
		zap.String("property_id", p.ID.String()),
		zap.String("slug", p.Slug),
		zap.String("broker_id", p.BrokerID.String()))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Property, error) {
	p, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
