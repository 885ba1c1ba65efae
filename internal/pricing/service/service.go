package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/luciodale/booking-portal-sub002/internal/config"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	"github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	taxdomain "github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Properties propertydomain.Service
	Rates      ratesdomain.Service
	Taxes      taxdomain.Resolver
	Fees       feedomain.Resolver
}

type Service struct {
	log        *zap.Logger
	maxNights  int
	properties propertydomain.Service
	rates      ratesdomain.Service
	taxes      taxdomain.Resolver
	fees       feedomain.Resolver
	tracer     trace.Tracer
}

func NewService(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("pricing.service"),
		maxNights:  p.Cfg.Booking.MaxNights,
		properties: p.Properties,
		rates:      p.Rates,
		taxes:      p.Taxes,
		fees:       p.Fees,
		tracer:     otel.Tracer("bookingportal/pricing"),
	}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "pricing.Quote", trace.WithAttributes(
		attribute.String("property.id", req.PropertyID.String()),
		attribute.String("stay.check_in", req.Range.CheckIn.String()),
		attribute.String("stay.check_out", req.Range.CheckOut.String()),
	))
	defer span.End()

	quote, err := s.quote(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote")
		return nil, err
	}
	return quote, nil
}

func (s *Service) quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	if err := domain.ValidateRange(req.Range, s.maxNights); err != nil {
		return nil, err
	}
	if req.Guests < 1 {
		return nil, domain.ErrInvalidGuests
	}
	if req.ExtrasCents < 0 {
		return nil, domain.ErrInvalidExtras
	}

	property, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.MaxGuests > 0 && req.Guests > property.MaxGuests {
		return nil, &domain.RangeError{
			Code:   domain.ErrInvalidGuests,
			Reason: fmt.Sprintf("this property sleeps at most %d guests", property.MaxGuests),
		}
	}

	// the PMS range is inclusive, the stay is not
	rates, err := s.rates.GetRates(ctx, ratesdomain.Request{
		ProviderPropertyID: property.ProviderPropertyID,
		Start:              req.Range.CheckIn,
		End:                req.Range.CheckOut.AddDays(-1),
	})
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAvailability(rates, req.Range, s.maxNights); err != nil {
		var rangeErr *domain.RangeError
		if errors.As(err, &rangeErr) {
			s.log.Debug("stay rejected",
				zap.String("property_id", property.ID.String()),
				zap.String("code", rangeErr.Code.Error()),
				zap.String("reason", rangeErr.Reason))
		}
		return nil, err
	}

	cityTax, err := s.taxes.Resolve(ctx, property)
	if err != nil {
		return nil, err
	}
	feePercent, err := s.fees.ResolveFeePercent(ctx, property.BrokerID)
	if err != nil {
		return nil, err
	}

	quote, err := domain.Calculate(domain.Input{
		Rates:              rates,
		Range:              req.Range,
		Guests:             req.Guests,
		CityTax:            cityTax,
		ExtrasCents:        req.ExtrasCents,
		Currency:           property.Currency,
		FeePercent:         feePercent,
		WithholdingPercent: s.fees.Defaults().WithholdingPercent,
	})
	if err != nil {
		return nil, err
	}
	quote.QuoteRef = ulid.Make().String()
	return &quote, nil
}
