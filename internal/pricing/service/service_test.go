package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	"github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	"github.com/luciodale/booking-portal-sub002/internal/pricing/service"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mocks ---

type MockProperties struct{ mock.Mock }

func (m *MockProperties) Register(ctx context.Context, req propertydomain.RegisterRequest) (*propertydomain.Property, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*propertydomain.Property), args.Error(1)
}

func (m *MockProperties) Get(ctx context.Context, id snowflake.ID) (*propertydomain.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*propertydomain.Property)
	return p, args.Error(1)
}

type MockRates struct{ mock.Mock }

func (m *MockRates) GetRates(ctx context.Context, req ratesdomain.Request) (ratesdomain.RateMap, error) {
	args := m.Called(ctx, req)
	rates, _ := args.Get(0).(ratesdomain.RateMap)
	return rates, args.Error(1)
}

type MockTaxes struct{ mock.Mock }

func (m *MockTaxes) Resolve(ctx context.Context, p *propertydomain.Property) (*domain.CityTaxRule, error) {
	args := m.Called(ctx, p)
	rule, _ := args.Get(0).(*domain.CityTaxRule)
	return rule, args.Error(1)
}

type MockFees struct{ mock.Mock }

func (m *MockFees) ResolveFeePercent(ctx context.Context, brokerID snowflake.ID) (int, error) {
	args := m.Called(ctx, brokerID)
	return args.Int(0), args.Error(1)
}

func (m *MockFees) Defaults() feedomain.Defaults {
	return feedomain.Defaults{FeePercent: 10, WithholdingPercent: 21}
}

// --- Tests ---

var property = &propertydomain.Property{
	ID:                 snowflake.ID(100),
	BrokerID:           snowflake.ID(7),
	ProviderPropertyID: "1234",
	City:               "roma",
	Country:            "IT",
	Currency:           "EUR",
	MaxGuests:          4,
}

func newService(props *MockProperties, rates *MockRates, taxes *MockTaxes, fees *MockFees) domain.Service {
	cfg := config.Config{}
	cfg.Booking.MaxNights = 30
	return service.NewService(service.Params{
		Log:        zap.NewNop(),
		Cfg:        cfg,
		Properties: props,
		Rates:      rates,
		Taxes:      taxes,
		Fees:       fees,
	})
}

func request(in, out string, guests int) domain.QuoteRequest {
	return domain.QuoteRequest{
		PropertyID: property.ID,
		Range:      calendar.Range{CheckIn: calendar.MustParse(in), CheckOut: calendar.MustParse(out)},
		Guests:     guests,
	}
}

func TestQuote(t *testing.T) {
	props, rates, taxes, fees := &MockProperties{}, &MockRates{}, &MockTaxes{}, &MockFees{}
	ctx := context.Background()

	props.On("Get", mock.Anything, property.ID).Return(property, nil)
	rates.On("GetRates", mock.Anything, ratesdomain.Request{
		ProviderPropertyID: "1234",
		Start:              calendar.MustParse("2024-06-01"),
		End:                calendar.MustParse("2024-06-02"),
	}).Return(ratesdomain.RateMap{
		"2024-06-01": {Price: 10000, MinStay: 2, Available: true},
		"2024-06-02": {Price: 12000, MinStay: 1, Available: true},
	}, nil)
	taxes.On("Resolve", mock.Anything, property).Return(&domain.CityTaxRule{PerGuestPerNightCents: 250}, nil)
	fees.On("ResolveFeePercent", mock.Anything, property.BrokerID).Return(12, nil)

	q, err := newService(props, rates, taxes, fees).Quote(ctx, request("2024-06-01", "2024-06-03", 2))
	require.NoError(t, err)

	assert.Equal(t, int64(22000), q.BaseTotalCents)
	assert.Equal(t, int64(1000), q.CityTaxCents)
	assert.Equal(t, int64(23000), q.TotalCents)
	assert.Equal(t, 12, q.FeePercent)
	assert.Equal(t, int64(2640), q.PlatformFeeCents)
	assert.Equal(t, int64(4620), q.WithholdingTaxCents)
	assert.Equal(t, "EUR", q.Currency)
	assert.Len(t, q.QuoteRef, 26)

	props.AssertExpectations(t)
	rates.AssertExpectations(t)
	taxes.AssertExpectations(t)
	fees.AssertExpectations(t)
}

func TestQuoteMinimumStayReason(t *testing.T) {
	props, rates := &MockProperties{}, &MockRates{}

	props.On("Get", mock.Anything, property.ID).Return(property, nil)
	rates.On("GetRates", mock.Anything, mock.Anything).Return(ratesdomain.RateMap{
		"2024-06-01": {Price: 10000, MinStay: 3, Available: true},
		"2024-06-02": {Price: 12000, MinStay: 1, Available: true},
	}, nil)

	_, err := newService(props, rates, &MockTaxes{}, &MockFees{}).Quote(context.Background(), request("2024-06-01", "2024-06-03", 2))
	assert.ErrorIs(t, err, domain.ErrBelowMinimumStay)
	assert.EqualError(t, err, "minimum stay is 3 nights")
}

func TestQuoteRejectsBeforeCallingOut(t *testing.T) {
	props, rates := &MockProperties{}, &MockRates{}
	svc := newService(props, rates, &MockTaxes{}, &MockFees{})

	_, err := svc.Quote(context.Background(), request("2024-06-03", "2024-06-01", 2))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.Quote(context.Background(), request("2024-06-01", "2024-08-01", 2))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.Quote(context.Background(), request("2024-06-01", "2024-06-03", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidGuests)

	props.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	rates.AssertNotCalled(t, "GetRates", mock.Anything, mock.Anything)
}

func TestQuoteTooManyGuests(t *testing.T) {
	props := &MockProperties{}
	props.On("Get", mock.Anything, property.ID).Return(property, nil)

	_, err := newService(props, &MockRates{}, &MockTaxes{}, &MockFees{}).Quote(context.Background(), request("2024-06-01", "2024-06-03", 5))
	assert.ErrorIs(t, err, domain.ErrInvalidGuests)
}

func TestQuotePropagatesUpstreamFailure(t *testing.T) {
	props, rates := &MockProperties{}, &MockRates{}
	props.On("Get", mock.Anything, property.ID).Return(property, nil)
	rates.On("GetRates", mock.Anything, mock.Anything).Return(nil, ratesdomain.Upstream("status 502", nil))

	_, err := newService(props, rates, &MockTaxes{}, &MockFees{}).Quote(context.Background(), request("2024-06-01", "2024-06-03", 2))
	assert.ErrorIs(t, err, ratesdomain.ErrUpstreamUnavailable)
}

func TestQuotePropertyNotFound(t *testing.T) {
	props := &MockProperties{}
	props.On("Get", mock.Anything, property.ID).Return(nil, propertydomain.ErrNotFound)

	_, err := newService(props, &MockRates{}, &MockTaxes{}, &MockFees{}).Quote(context.Background(), request("2024-06-01", "2024-06-03", 2))
	assert.ErrorIs(t, err, propertydomain.ErrNotFound)
}
