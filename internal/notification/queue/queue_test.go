package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/luciodale/booking-portal-sub002/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []domain.Notice
	err  error
}

func (f *fakeSender) Send(_ context.Context, n domain.Notice) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func notice() domain.Notice {
	return domain.Notice{
		BookingID:   42,
		GuestEmail:  "guest@example.com",
		CheckIn:     "2024-06-01",
		CheckOut:    "2024-06-03",
		TotalCents:  22000,
		Currency:    "EUR",
		ConfirmedAt: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestNotifier_EnqueueIsKeyedByBooking(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := NewNotifier(client, zap.NewNop())

	require.NoError(t, q.NotifyConfirmed(context.Background(), notice()))
	assert.True(t, mr.Exists("asynq:{"+QueueName+"}:t:booking-confirmed:42"))

	// A redelivered webhook must not queue a second notice.
	require.NoError(t, q.NotifyConfirmed(context.Background(), notice()))
}

func TestNotifier_RejectsInvalidNotice(t *testing.T) {
	q := &Notifier{log: zap.NewNop()}
	err := q.NotifyConfirmed(context.Background(), domain.Notice{})
	assert.ErrorIs(t, err, domain.ErrInvalidNotice)
}

func TestHandler_Delivers(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, zap.NewNop())

	task, err := NewConfirmedTask(notice())
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(22000), sender.sent[0].TotalCents)
}

func TestHandler_RetryableAndTerminalFailures(t *testing.T) {
	boom := errors.New("connection refused")
	h := NewHandler(&fakeSender{err: boom}, zap.NewNop())

	task, err := NewConfirmedTask(notice())
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	bad := asynq.NewTask(domain.TaskTypeBookingConfirmed, []byte("{"))
	assert.ErrorIs(t, h.ProcessTask(context.Background(), bad), asynq.SkipRetry)

	empty, _ := json.Marshal(domain.Notice{})
	assert.ErrorIs(t, h.ProcessTask(context.Background(), asynq.NewTask(domain.TaskTypeBookingConfirmed, empty)), asynq.SkipRetry)
}
