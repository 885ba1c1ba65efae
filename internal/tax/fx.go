package tax

import (
	"github.com/luciodale/booking-portal-sub002/internal/tax/repository"
	"github.com/luciodale/booking-portal-sub002/internal/tax/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tax.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
