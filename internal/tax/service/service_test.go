package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/clock"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"github.com/luciodale/booking-portal-sub002/internal/tax/domain"
	"github.com/luciodale/booking-portal-sub002/internal/tax/repository"
	"github.com/luciodale/booking-portal-sub002/internal/tax/service"
	"github.com/luciodale/booking-portal-sub002/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newParams(t *testing.T) service.Params {
	t.Helper()
	db := dbtest.Open(t, &domain.CityTaxDefault{})
	return service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: dbtest.Node(t),
		Repo:  repository.NewRepository(db),
		Clock: clock.Fixed(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestUpsertReplacesByLocation(t *testing.T) {
	svc := service.NewService(newParams(t))
	ctx := context.Background()
	five := 5

	_, err := svc.Upsert(ctx, domain.UpsertRequest{City: "Roma", Country: "it", AmountCents: 300})
	require.NoError(t, err)
	row, err := svc.Upsert(ctx, domain.UpsertRequest{City: " roma ", Country: "IT", AmountCents: 350, MaxNights: &five})
	require.NoError(t, err)

	assert.Equal(t, "roma", row.City)
	assert.Equal(t, int64(350), row.AmountCents)
	require.NotNil(t, row.MaxNights)
	assert.Equal(t, 5, *row.MaxNights)

	rows, err := svc.List(ctx, "it")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpsertValidation(t *testing.T) {
	svc := service.NewService(newParams(t))
	zero := 0

	_, err := svc.Upsert(context.Background(), domain.UpsertRequest{City: "", Country: "IT"})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
	_, err = svc.Upsert(context.Background(), domain.UpsertRequest{City: "Roma", Country: "IT", AmountCents: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.Upsert(context.Background(), domain.UpsertRequest{City: "Roma", Country: "IT", MaxNights: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxNights)
}

func TestResolvePrefersPropertyRule(t *testing.T) {
	p := newParams(t)
	svc := service.NewService(p)
	resolver := service.NewResolver(p)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.UpsertRequest{City: "Roma", Country: "IT", AmountCents: 300})
	require.NoError(t, err)

	own := int64(450)
	rule, err := resolver.Resolve(ctx, &propertydomain.Property{City: "Roma", Country: "IT", CityTaxCents: &own})
	require.NoError(t, err)
	assert.Equal(t, int64(450), rule.PerGuestPerNightCents)

	rule, err = resolver.Resolve(ctx, &propertydomain.Property{City: "ROMA", Country: "it"})
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(300), rule.PerGuestPerNightCents)
	assert.Nil(t, rule.MaxNights)

	rule, err = resolver.Resolve(ctx, &propertydomain.Property{City: "Milano", Country: "IT"})
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestGetNotFound(t *testing.T) {
	_, err := service.NewService(newParams(t)).Get(context.Background(), "Oslo", "NO")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
