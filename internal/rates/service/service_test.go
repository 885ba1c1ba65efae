package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/observability"
	"github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/luciodale/booking-portal-sub002/internal/rates/mocks"
	"github.com/luciodale/booking-portal-sub002/internal/rates/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var req = domain.Request{
	ProviderPropertyID: "1234",
	Start:              calendar.MustParse("2024-06-01"),
	End:                calendar.MustParse("2024-06-02"),
}

var sample = domain.RateMap{
	"2024-06-01": {Price: 10000, MinStay: 1, Available: true},
	"2024-06-02": {Price: 12000, MinStay: 1, Available: true},
}

func newService(provider domain.Provider, cache domain.Cache) domain.Service {
	cfg := config.Config{}
	cfg.Rates.CacheTTL = 5 * time.Minute
	return service.NewService(service.Params{
		Provider: provider,
		Cache:    cache,
		Cfg:      cfg,
		Log:      zap.NewNop(),
		Metrics:  observability.NopMetrics(),
	})
}

func TestGetRatesCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), "rates:1234:2024-06-01:2024-06-02").Return(sample, true, nil)

	got, err := newService(provider, cache).GetRates(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestGetRatesMissPopulatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	cache := mocks.NewMockCache(ctrl)

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), req.CacheKey()).Return(nil, false, nil),
		provider.EXPECT().FetchRates(gomock.Any(), req).Return(sample, nil),
		cache.EXPECT().Set(gomock.Any(), req.CacheKey(), sample, 5*time.Minute).Return(nil),
	)

	got, err := newService(provider, cache).GetRates(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestGetRatesCacheFailuresAreAdvisory(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))
	provider.EXPECT().FetchRates(gomock.Any(), req).Return(sample, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	got, err := newService(provider, cache).GetRates(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestGetRatesUpstreamFailureNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
	provider.EXPECT().FetchRates(gomock.Any(), req).Return(nil, errors.New("connection refused"))

	_, err := newService(provider, cache).GetRates(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestGetRatesWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().FetchRates(gomock.Any(), req).Return(sample, nil).Times(2)

	svc := newService(provider, nil)
	for range 2 {
		_, err := svc.GetRates(context.Background(), req)
		require.NoError(t, err)
	}
}
