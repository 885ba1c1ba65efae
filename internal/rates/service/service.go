package service

import (
	"context"
	"errors"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/observability"
	"github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Provider domain.Provider
	Cache    domain.Cache
	Cfg      config.Config
	Log      *zap.Logger
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	provider domain.Provider
	cache    domain.Cache
	ttl      time.Duration
	log      *zap.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

func NewService(p Params) domain.Service {
	metrics := p.Metrics
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Service{
		provider: p.Provider,
		cache:    p.Cache,
		ttl:      p.Cfg.Rates.CacheTTL,
		log:      p.Log.Named("rates.service"),
		metrics:  metrics,
		tracer:   otel.Tracer("bookingportal/rates"),
	}
}

// GetRates serves from cache when possible. A provider failure is returned
// as is; stale entries are never substituted.
func (s *Service) GetRates(ctx context.Context, req domain.Request) (domain.RateMap, error) {
	if req.ProviderPropertyID == "" {
		return nil, domain.ErrInvalidPropertyID
	}

	ctx, span := s.tracer.Start(ctx, "rates.GetRates", trace.WithAttributes(
		attribute.String("rates.property_id", req.ProviderPropertyID),
		attribute.String("rates.start", req.Start.String()),
		attribute.String("rates.end", req.End.String()),
	))
	defer span.End()

	key := req.CacheKey()
	if s.cache != nil {
		rates, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.RateCache.WithLabelValues("error").Inc()
			s.log.Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			s.metrics.RateCache.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("rates.cache_hit", true))
			return rates, nil
		default:
			s.metrics.RateCache.WithLabelValues("miss").Inc()
		}
	}

	rates, err := s.provider.FetchRates(ctx, req)
	if err != nil {
		s.metrics.RateFetchErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch rates")
		if !errors.Is(err, domain.ErrUpstreamUnavailable) && !errors.Is(err, domain.ErrInvalidPropertyID) {
			err = domain.Upstream("provider", err)
		}
		s.log.Warn("rate fetch failed",
			zap.String("property_id", req.ProviderPropertyID),
			zap.Error(err))
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, rates, s.ttl); err != nil {
			s.log.Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rates, nil
}
