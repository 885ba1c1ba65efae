package fee

import (
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	"github.com/luciodale/booking-portal-sub002/internal/fee/repository"
	"github.com/luciodale/booking-portal-sub002/internal/fee/service"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("fee",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Resolver { return svc }),
	fx.Invoke(watchDefaults),
)

// watchDefaults pushes edited platform percentages into the running resolver.
func watchDefaults(v *viper.Viper, svc domain.Service, log *zap.Logger) {
	log = log.Named("fee.config")
	config.Watch(v, func(cfg config.Config, err error) {
		if err != nil {
			log.Error("config reload failed, keeping current fee defaults", zap.Error(err))
			return
		}
		svc.SetDefaults(domain.Defaults{
			FeePercent:         cfg.Fees.DefaultPercent,
			WithholdingPercent: cfg.Fees.WithholdingPercent,
		})
		log.Info("fee defaults reloaded",
			zap.Int("fee_percent", cfg.Fees.DefaultPercent),
			zap.Int("withholding_percent", cfg.Fees.WithholdingPercent))
	})
}
