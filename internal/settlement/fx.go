package settlement

import (
	"github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	"github.com/luciodale/booking-portal-sub002/internal/settlement/repository"
	"github.com/luciodale/booking-portal-sub002/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Handler { return s }),
	fx.Provide(service.NewFlagService),
)
