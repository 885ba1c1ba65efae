package property

import (
	"github.com/luciodale/booking-portal-sub002/internal/property/repository"
	"github.com/luciodale/booking-portal-sub002/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
