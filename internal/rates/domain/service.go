package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../mocks/mock_domain.go -package=mocks . Provider,Cache

// Provider fetches nightly rates from the property-management system.
type Provider interface {
	FetchRates(ctx context.Context, req Request) (RateMap, error)
}

// Cache is advisory: a failed Get is treated as a miss and a failed Set is
// only logged.
type Cache interface {
	Get(ctx context.Context, key string) (RateMap, bool, error)
	Set(ctx context.Context, key string, rates RateMap, ttl time.Duration) error
}

type Service interface {
	GetRates(ctx context.Context, req Request) (RateMap, error)
}
