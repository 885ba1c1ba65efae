package domain

import (
	"context"
	"net/http"
)

type PaymentAdapter interface {
	// Webhook handling
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)

	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*ProviderCheckoutSession, error)
}

type AdapterConfig struct {
	Provider string
	Config   map[string]any
}

type AdapterFactory interface {
	Provider() string
	NewAdapter(config AdapterConfig) (PaymentAdapter, error)
}

// ProviderConfigs holds adapter settings keyed by provider name.
type ProviderConfigs map[string]map[string]any
