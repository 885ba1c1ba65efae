package adapters

import (
	"strings"

	"github.com/luciodale/booking-portal-sub002/internal/payment/domain"
)

type Registry struct {
	factories map[string]domain.AdapterFactory
	configs   domain.ProviderConfigs
}

func NewRegistry(configs domain.ProviderConfigs, factories ...domain.AdapterFactory) *Registry {
	r := &Registry{
		factories: make(map[string]domain.AdapterFactory, len(factories)),
		configs:   configs,
	}
	for _, f := range factories {
		r.factories[strings.ToLower(f.Provider())] = f
	}
	return r
}

func (r *Registry) ProviderExists(provider string) bool {
	_, ok := r.factories[strings.ToLower(provider)]
	return ok
}

// Adapter builds the provider's adapter from its configured settings.
func (r *Registry) Adapter(provider string) (domain.PaymentAdapter, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	factory, ok := r.factories[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	cfg, ok := r.configs[provider]
	if !ok || len(cfg) == 0 {
		return nil, domain.ErrProviderNotFound
	}
	return factory.NewAdapter(domain.AdapterConfig{Provider: provider, Config: cfg})
}
