package booking

import (
	"github.com/luciodale/booking-portal-sub002/internal/booking/repository"
	"github.com/luciodale/booking-portal-sub002/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
