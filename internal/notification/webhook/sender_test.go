package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luciodale/booking-portal-sub002/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notice() domain.Notice {
	return domain.Notice{
		BookingID:   42,
		PropertyID:  7,
		GuestEmail:  "guest@example.com",
		CheckIn:     "2024-06-01",
		CheckOut:    "2024-06-03",
		Nights:      2,
		TotalCents:  22000,
		Currency:    "EUR",
		ConfirmedAt: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestSender_PostsEnvelope(t *testing.T) {
	var got envelope
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		key = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s, err := NewSender(srv.URL, srv.Client())
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), notice()))
	assert.Equal(t, domain.TaskTypeBookingConfirmed, got.Type)
	assert.Equal(t, int64(22000), got.Notice.TotalCents)
	assert.Equal(t, "42", key)
}

func TestSender_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewSender(srv.URL, nil)
	require.NoError(t, err)

	err = s.Send(context.Background(), notice())
	assert.ErrorIs(t, err, domain.ErrDeliveryRejected)
}

func TestSender_Validation(t *testing.T) {
	_, err := NewSender("  ", nil)
	assert.ErrorIs(t, err, domain.ErrMissingWebhookURL)

	s, err := NewSender("http://127.0.0.1:1", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Send(context.Background(), domain.Notice{}), domain.ErrInvalidNotice)
}
