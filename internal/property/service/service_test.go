package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"github.com/luciodale/booking-portal-sub002/internal/property/repository"
	"github.com/luciodale/booking-portal-sub002/internal/property/service"
	"github.com/luciodale/booking-portal-sub002/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) domain.Service {
	t.Helper()
	db := dbtest.Open(t, &domain.Property{})
	cfg := config.Config{}
	cfg.Booking.Currency = "EUR"
	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: dbtest.Node(t),
		Repo:  repository.Provide(db),
		Clock: clock.Fixed(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		Cfg:   cfg,
	})
}

func validRequest() domain.RegisterRequest {
	return domain.RegisterRequest{
		BrokerID:           snowflake.ID(7),
		Name:               "Casa Sul Lago",
		ProviderPropertyID: "1234",
		City:               "Como",
		Country:            "it",
	}
}

func TestRegister(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "casa-sul-lago", p.Slug)
	assert.Equal(t, "IT", p.Country)
	assert.Equal(t, "EUR", p.Currency)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ProviderPropertyID, got.ProviderPropertyID)
}

func TestRegisterDuplicateNameGetsDistinctSlug(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)
	second, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "casa-sul-lago-")
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t)
	negative := int64(-1)
	zero := 0

	cases := map[string]struct {
		mutate func(*domain.RegisterRequest)
		want   error
	}{
		"no broker":       {func(r *domain.RegisterRequest) { r.BrokerID = 0 }, domain.ErrInvalidBroker},
		"no name":         {func(r *domain.RegisterRequest) { r.Name = " " }, domain.ErrInvalidName},
		"no pms id":       {func(r *domain.RegisterRequest) { r.ProviderPropertyID = "" }, domain.ErrInvalidProviderID},
		"bad country":     {func(r *domain.RegisterRequest) { r.Country = "ITA" }, domain.ErrInvalidLocation},
		"bad currency":    {func(r *domain.RegisterRequest) { r.Currency = "EU" }, domain.ErrInvalidCurrency},
		"negative tax":    {func(r *domain.RegisterRequest) { r.CityTaxCents = &negative }, domain.ErrInvalidCityTaxRule},
		"zero tax nights": {func(r *domain.RegisterRequest) { r.CityTaxMaxNights = &zero }, domain.ErrInvalidCityTaxRule},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := newService(t).Get(context.Background(), snowflake.ID(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
