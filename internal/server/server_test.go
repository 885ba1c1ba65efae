package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/luciodale/booking-portal-sub002/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mocks ---

type MockPricing struct {
	mock.Mock
}

func (m *MockPricing) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Quote, error) {
	args := m.Called(ctx, req)
	if q := args.Get(0); q != nil {
		return q.(*pricingdomain.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockWebhooks struct {
	mock.Mock
}

func (m *MockWebhooks) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (paymentdomain.Ack, error) {
	args := m.Called(ctx, provider, payload, headers)
	return args.Get(0).(paymentdomain.Ack), args.Error(1)
}

type MockBookings struct {
	mock.Mock
}

func (m *MockBookings) Get(ctx context.Context, id snowflake.ID) (*bookingdomain.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*bookingdomain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookings) ListByProperty(ctx context.Context, req bookingdomain.ListRequest) ([]bookingdomain.Booking, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]bookingdomain.Booking), args.Error(1)
}

func (m *MockBookings) Cancel(ctx context.Context, id snowflake.ID, reason string) (*bookingdomain.Booking, error) {
	args := m.Called(ctx, id, reason)
	if b := args.Get(0); b != nil {
		return b.(*bookingdomain.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookings) Today(context.Context) calendar.Date {
	return calendar.MustParse("2024-06-12")
}

type MockFees struct {
	mock.Mock
}

func (m *MockFees) ResolveFeePercent(ctx context.Context, brokerID snowflake.ID) (int, error) {
	args := m.Called(ctx, brokerID)
	return args.Int(0), args.Error(1)
}

func (m *MockFees) Defaults() feedomain.Defaults {
	return feedomain.Defaults{FeePercent: 10, WithholdingPercent: 21}
}

func (m *MockFees) SetOverride(ctx context.Context, brokerID snowflake.ID, pct int) (*feedomain.FeeOverride, error) {
	args := m.Called(ctx, brokerID, pct)
	if o := args.Get(0); o != nil {
		return o.(*feedomain.FeeOverride), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFees) GetOverride(ctx context.Context, brokerID snowflake.ID) (*feedomain.FeeOverride, error) {
	args := m.Called(ctx, brokerID)
	if o := args.Get(0); o != nil {
		return o.(*feedomain.FeeOverride), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFees) DeleteOverride(ctx context.Context, brokerID snowflake.ID) error {
	return m.Called(ctx, brokerID).Error(0)
}

func (m *MockFees) SetDefaults(feedomain.Defaults) {}

// --- Setup ---

type fixture struct {
	srv      *Server
	pricing  *MockPricing
	webhooks *MockWebhooks
	bookings *MockBookings
	fees     *MockFees
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		pricing:  new(MockPricing),
		webhooks: new(MockWebhooks),
		bookings: new(MockBookings),
		fees:     new(MockFees),
	}
	f.srv = New(Params{
		Log:      zap.NewNop(),
		DB:       dbtest.Open(t),
		Pricing:  f.pricing,
		Webhooks: f.webhooks,
		Bookings: f.bookings,
		Fees:     f.fees,
	})
	return f
}

func (f *fixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Night   string `json:"night"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var quoteBody = map[string]any{
	"property_id": "100",
	"check_in":    "2024-06-01",
	"check_out":   "2024-06-03",
	"guests":      2,
}

// --- Tests ---

func TestCreateQuote_OK(t *testing.T) {
	f := setup(t)
	f.pricing.On("Quote", mock.Anything, mock.MatchedBy(func(req pricingdomain.QuoteRequest) bool {
		return req.PropertyID == 100 && req.Range.Nights() == 2 && req.Guests == 2
	})).Return(&pricingdomain.Quote{
		CheckIn:        calendar.MustParse("2024-06-01"),
		CheckOut:       calendar.MustParse("2024-06-03"),
		Nights:         2,
		BaseTotalCents: 22000,
		TotalCents:     22000,
		Currency:       "EUR",
	}, nil)

	rec := f.do(http.MethodPost, "/api/quotes", quoteBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data pricingdomain.Quote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(22000), body.Data.BaseTotalCents)
	assert.Equal(t, "2024-06-01", body.Data.CheckIn.String())
	assert.Equal(t, 2, body.Data.Range().Nights())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestCreateCheckoutSession_BindingRejectsBadInput(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"property_id": "100",
			"check_in":    "2024-06-01",
			"check_out":   "2024-06-03",
			"guests":      2,
			"guest_email": "guest@example.com",
			"success_url": "https://portal.example.com/ok",
			"cancel_url":  "https://portal.example.com/cancel",
		}
	}
	cases := []struct {
		field string
		value any
	}{
		{"guest_email", "not-an-email"},
		{"guest_email", ""},
		{"success_url", "javascript:alert(1)"},
		{"cancel_url", "portal.example.com/cancel"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			f := setup(t)
			body := valid()
			body[tc.field] = tc.value

			rec := f.do(http.MethodPost, "/api/checkout/sessions", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decodeError(t, rec).Error.Code)
		})
	}
}

func TestCreateQuote_ErrorMapping(t *testing.T) {
	night := calendar.MustParse("2024-06-02")
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "minimum stay",
			err:     &pricingdomain.RangeError{Code: pricingdomain.ErrBelowMinimumStay, Reason: "minimum stay is 3 nights"},
			status:  http.StatusUnprocessableEntity,
			code:    "below_minimum_stay",
			message: "minimum stay is 3 nights",
		},
		{
			name:    "blocked night",
			err:     &pricingdomain.RangeError{Code: pricingdomain.ErrNightUnavailable, Reason: "2024-06-02 is not available", Night: night},
			status:  http.StatusConflict,
			code:    "night_unavailable",
			message: "2024-06-02 is not available",
		},
		{
			name:   "missing rate data",
			err:    &pricingdomain.RangeError{Code: pricingdomain.ErrMissingRateData, Night: night},
			status: http.StatusUnprocessableEntity,
			code:   "missing_rate_data",
		},
		{
			name:   "upstream",
			err:    ratesdomain.Upstream("status 429", nil),
			status: http.StatusServiceUnavailable,
			code:   "upstream_unavailable",
		},
		{
			name:   "unknown",
			err:    errors.New("pq: connection reset"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			f.pricing.On("Quote", mock.Anything, mock.Anything).Return(nil, tc.err)

			rec := f.do(http.MethodPost, "/api/quotes", quoteBody)
			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, body.Error.Message)
			}
		})
	}
}

func TestCreateQuote_BadInput(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodPost, "/api/quotes", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := map[string]any{"property_id": "100", "check_in": "06/01/2024", "check_out": "2024-06-03", "guests": 1}
	rec = f.do(http.MethodPost, "/api/quotes", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date", decodeError(t, rec).Error.Code)

	f.pricing.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
}

func TestReceiveWebhook(t *testing.T) {
	f := setup(t)
	payload := `{"id":"evt_1"}`
	f.webhooks.On("IngestWebhook", mock.Anything, "stripe", []byte(payload), mock.Anything).
		Return(paymentdomain.Ack{EventID: "evt_1", Outcome: "confirmed"}, nil).Once()
	f.webhooks.On("IngestWebhook", mock.Anything, "stripe", []byte(payload), mock.Anything).
		Return(paymentdomain.Ack{}, paymentdomain.ErrInvalidSignature).Once()
	f.webhooks.On("IngestWebhook", mock.Anything, "stripe", []byte(payload), mock.Anything).
		Return(paymentdomain.Ack{}, errors.New("database is locked")).Once()

	rec := f.do(http.MethodPost, "/api/webhooks/stripe", payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"confirmed"`)

	rec = f.do(http.MethodPost, "/api/webhooks/stripe", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/webhooks/stripe", payload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetBooking_DisplayStatus(t *testing.T) {
	f := setup(t)
	f.bookings.On("Get", mock.Anything, snowflake.ID(5)).Return(&bookingdomain.Booking{
		ID:       5,
		CheckIn:  "2024-06-01",
		CheckOut: "2024-06-03",
		Status:   bookingdomain.StatusConfirmed,
	}, nil)
	f.bookings.On("Get", mock.Anything, snowflake.ID(6)).Return(nil, bookingdomain.ErrNotFound)

	rec := f.do(http.MethodGet, "/api/bookings/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
	assert.Contains(t, rec.Body.String(), `"display_status":"completed"`)

	rec = f.do(http.MethodGet, "/api/bookings/6", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookingReceipt_PendingIsRejected(t *testing.T) {
	f := setup(t)
	f.bookings.On("Get", mock.Anything, snowflake.ID(5)).Return(&bookingdomain.Booking{
		ID:     5,
		Status: bookingdomain.StatusPending,
	}, nil)

	rec := f.do(http.MethodGet, "/api/bookings/5/receipt", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "receipt_not_available", decodeError(t, rec).Error.Code)
}

func TestCancelBooking_NotCancellable(t *testing.T) {
	f := setup(t)
	f.bookings.On("Cancel", mock.Anything, snowflake.ID(5), "").Return(nil, bookingdomain.ErrNotCancellable)

	rec := f.do(http.MethodPost, "/api/bookings/5/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFeeOverride(t *testing.T) {
	f := setup(t)
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	f.fees.On("GetOverride", mock.Anything, snowflake.ID(7)).Return(nil, feedomain.ErrOverrideNotFound)
	f.fees.On("ResolveFeePercent", mock.Anything, snowflake.ID(7)).Return(10, nil)
	f.fees.On("SetOverride", mock.Anything, snowflake.ID(7), 12).
		Return(&feedomain.FeeOverride{ID: 1, BrokerID: 7, FeePercent: 12, CreatedAt: now, UpdatedAt: now}, nil)
	f.fees.On("SetOverride", mock.Anything, snowflake.ID(7), 120).Return(nil, feedomain.ErrInvalidFeePercent)

	rec := f.do(http.MethodGet, "/api/admin/brokers/7/fee-override", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"override":null`)
	assert.Contains(t, rec.Body.String(), `"effective_fee_percent":10`)

	rec = f.do(http.MethodPut, "/api/admin/brokers/7/fee-override", map[string]any{"fee_percent": 12})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fee_percent":12`)

	rec = f.do(http.MethodPut, "/api/admin/brokers/7/fee-override", map[string]any{"fee_percent": 120})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/admin/brokers/7/fee-override", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/healthz", nil, requestIDHeader, "req-123")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{" * "}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://portal.example.com", ""})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.AllowOrigins)
}
