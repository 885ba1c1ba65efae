package payment

import (
	"strings"

	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/payment/adapters"
	"github.com/luciodale/booking-portal-sub002/internal/payment/adapters/stripe"
	"github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	"github.com/luciodale/booking-portal-sub002/internal/payment/repository"
	paymentservice "github.com/luciodale/booking-portal-sub002/internal/payment/service"
	"github.com/luciodale/booking-portal-sub002/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(newRegistry),
	fx.Provide(paymentservice.NewCheckoutService),
	fx.Provide(webhook.NewService),
)

func providerConfigs(cfg config.Config) domain.ProviderConfigs {
	configs := domain.ProviderConfigs{}
	if secret := strings.TrimSpace(cfg.Stripe.WebhookSecret); secret != "" {
		configs["stripe"] = map[string]any{
			"webhook_secret": secret,
			"api_key":        strings.TrimSpace(cfg.Stripe.SecretKey),
		}
	}
	return configs
}

func newRegistry(cfg config.Config) *adapters.Registry {
	return adapters.NewRegistry(providerConfigs(cfg), stripe.NewFactory())
}
