package rates

import (
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/rates/cache"
	"github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/luciodale/booking-portal-sub002/internal/rates/service"
	"github.com/luciodale/booking-portal-sub002/internal/rates/smoobu"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rates",
	fx.Provide(newProvider),
	fx.Provide(newCache),
	fx.Provide(service.NewService),
)

func newProvider(cfg config.Config, log *zap.Logger) domain.Provider {
	return smoobu.NewClient(smoobu.Config{
		BaseURL:           cfg.Smoobu.BaseURL,
		APIKey:            cfg.Smoobu.APIKey,
		RequestsPerSecond: cfg.Smoobu.RequestsPerSecond,
		Burst:             cfg.Smoobu.Burst,
		Timeout:           cfg.Smoobu.Timeout,
	}, log)
}

func newCache(client *redis.Client) domain.Cache {
	if client == nil {
		return cache.Noop{}
	}
	return cache.NewRedisCache(client)
}
