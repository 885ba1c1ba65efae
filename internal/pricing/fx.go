package pricing

import (
	"github.com/luciodale/booking-portal-sub002/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing",
	fx.Provide(service.NewService),
)
