package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/booking/repository"
	"github.com/luciodale/booking-portal-sub002/internal/booking/service"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T, rows ...*domain.Booking) domain.Service {
	t.Helper()
	db := dbtest.Open(t, &domain.Booking{})
	for _, b := range rows {
		require.NoError(t, db.Create(b).Error)
	}
	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(db),
		Clock: clock.Fixed(today),
	})
}

func row(id int64, in, out string, status domain.Status) *domain.Booking {
	return &domain.Booking{
		ID:                snowflake.ID(id),
		PropertyID:        100,
		BrokerID:          7,
		GuestEmail:        "guest@example.com",
		Guests:            1,
		CheckIn:           in,
		CheckOut:          out,
		Nights:            1,
		Status:            status,
		Currency:          "EUR",
		Provider:          "stripe",
		ProviderSessionID: "cs_" + snowflake.ID(id).String(),
		CreatedAt:         today,
		UpdatedAt:         today,
	}
}

func TestCancelPending(t *testing.T) {
	svc := setup(t, row(1, "2024-07-01", "2024-07-03", domain.StatusPending))

	b, err := svc.Cancel(context.Background(), snowflake.ID(1), "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.Equal(t, domain.CancelReasonBroker, b.CancelReason)
	assert.False(t, b.NeedsRefund)
}

func TestCancelConfirmedNeedsRefund(t *testing.T) {
	svc := setup(t, row(1, "2024-07-01", "2024-07-03", domain.StatusConfirmed))

	b, err := svc.Cancel(context.Background(), snowflake.ID(1), "owner request")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.True(t, b.NeedsRefund)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc := setup(t, row(1, "2024-07-01", "2024-07-03", domain.StatusPending))
	ctx := context.Background()

	first, err := svc.Cancel(ctx, snowflake.ID(1), "first")
	require.NoError(t, err)
	second, err := svc.Cancel(ctx, snowflake.ID(1), "second")
	require.NoError(t, err)

	assert.Equal(t, "first", second.CancelReason)
	assert.Equal(t, first.CancelledAt, second.CancelledAt)
}

func TestCancelCompletedStayRejected(t *testing.T) {
	svc := setup(t, row(1, "2024-06-01", "2024-06-05", domain.StatusConfirmed))

	_, err := svc.Cancel(context.Background(), snowflake.ID(1), "")
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

func TestCancelNotFound(t *testing.T) {
	_, err := setup(t).Cancel(context.Background(), snowflake.ID(9), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisplayStatus(t *testing.T) {
	now := calendar.FromTime(today)
	assert.Equal(t, domain.StatusCompleted, row(1, "2024-06-01", "2024-06-12", domain.StatusConfirmed).DisplayStatus(now))
	assert.Equal(t, domain.StatusConfirmed, row(1, "2024-06-10", "2024-06-13", domain.StatusConfirmed).DisplayStatus(now))
	assert.Equal(t, domain.StatusPending, row(1, "2024-06-01", "2024-06-02", domain.StatusPending).DisplayStatus(now))
}

func TestListByProperty(t *testing.T) {
	svc := setup(t,
		row(1, "2024-07-05", "2024-07-07", domain.StatusConfirmed),
		row(2, "2024-07-01", "2024-07-03", domain.StatusPending),
		row(3, "2024-07-10", "2024-07-12", domain.StatusCancelled),
	)

	all, err := svc.ListByProperty(context.Background(), domain.ListRequest{PropertyID: 100})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-07-01", all[0].CheckIn)

	active, err := svc.ListByProperty(context.Background(), domain.ListRequest{
		PropertyID: 100,
		Statuses:   []domain.Status{domain.StatusPending, domain.StatusConfirmed},
	})
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
