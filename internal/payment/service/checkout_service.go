package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/payment/adapters"
	"github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultProvider = "stripe"

var validate = validator.New()

type CheckoutServiceParams struct {
	fx.In

	Registry   *adapters.Registry
	Pricing    pricingdomain.Service
	Properties propertydomain.Service
	Bookings   bookingdomain.Repository
	GenID      *snowflake.Node
	Clock      clock.Clock
	Logger     *zap.Logger
	DB         *gorm.DB
}

type CheckoutServiceImpl struct {
	registry   *adapters.Registry
	pricing    pricingdomain.Service
	properties propertydomain.Service
	bookings   bookingdomain.Repository
	genID      *snowflake.Node
	clock      clock.Clock
	logger     *zap.Logger
	db         *gorm.DB
}

func NewCheckoutService(p CheckoutServiceParams) domain.CheckoutService {
	return &CheckoutServiceImpl{
		registry:   p.Registry,
		pricing:    p.Pricing,
		properties: p.Properties,
		bookings:   p.Bookings,
		genID:      p.GenID,
		clock:      p.Clock,
		logger:     p.Logger.Named("payment.checkout"),
		db:         p.DB,
	}
}

// CreateSession prices the stay again server side, refuses dates that are
// already confirmed for the property, opens the provider checkout and stores
// the pending booking that the webhook will later settle.
func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.GuestEmail))
	if validate.Var(email, "required,email") != nil {
		return nil, bookingdomain.ErrInvalidEmail
	}
	if validate.Var(req.SuccessURL, "required,http_url") != nil || validate.Var(req.CancelURL, "required,http_url") != nil {
		return nil, domain.ErrInvalidURL
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		provider = defaultProvider
	}

	// 1. Quote with live rates
	quote, err := s.pricing.Quote(ctx, pricingdomain.QuoteRequest{
		PropertyID:  req.PropertyID,
		Range:       req.Range,
		Guests:      req.Guests,
		ExtrasCents: req.ExtrasCents,
	})
	if err != nil {
		return nil, err
	}

	// 2. Dates already sold in our own store
	taken, err := s.bookings.HasConfirmedOverlap(ctx, s.db, req.PropertyID, quote.Range(), 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, bookingdomain.ErrDatesTaken
	}

	property, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	// 3. Provider session, one attempt
	adapter, err := s.registry.Adapter(provider)
	if err != nil {
		return nil, err
	}
	bookingID := s.genID.Generate()
	providerSession, err := adapter.CreateCheckoutSession(ctx, domain.CheckoutSessionInput{
		Reference:     bookingID.String(),
		AmountCents:   quote.TotalCents,
		Currency:      quote.Currency,
		Description:   describeStay(property.Name, quote),
		CustomerEmail: email,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata: map[string]string{
			"booking_id":  bookingID.String(),
			"property_id": property.ID.String(),
			"quote_ref":   quote.QuoteRef,
		},
	})
	if err != nil {
		s.logger.Error("checkout session creation failed",
			zap.String("provider", provider),
			zap.String("property_id", property.ID.String()),
			zap.Error(err))
		return nil, err
	}

	// 4. Pending booking
	now := s.clock.Now(ctx).UTC()
	booking := &bookingdomain.Booking{
		ID:                  bookingID,
		PropertyID:          property.ID,
		BrokerID:            property.BrokerID,
		GuestEmail:          email,
		GuestName:           strings.TrimSpace(req.GuestName),
		Guests:              quote.Guests,
		CheckIn:             quote.CheckIn.String(),
		CheckOut:            quote.CheckOut.String(),
		Nights:              quote.Nights,
		Status:              bookingdomain.StatusPending,
		BaseTotalCents:      quote.BaseTotalCents,
		ExtrasCents:         quote.ExtrasCents,
		CityTaxCents:        quote.CityTaxCents,
		TotalCents:          quote.TotalCents,
		WithholdingTaxCents: quote.WithholdingTaxCents,
		Currency:            quote.Currency,
		QuoteRef:            quote.QuoteRef,
		Provider:            provider,
		ProviderSessionID:   providerSession.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.bookings.Insert(ctx, s.db, booking); err != nil {
		s.logger.Error("failed to save pending booking",
			zap.String("booking_id", bookingID.String()),
			zap.String("provider_session_id", providerSession.ID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.String("booking_id", bookingID.String()),
		zap.String("property_id", property.ID.String()),
		zap.String("provider_session_id", providerSession.ID),
		zap.Int64("total_cents", quote.TotalCents))

	result := &domain.CheckoutResult{
		BookingID:         bookingID,
		Provider:          provider,
		ProviderSessionID: providerSession.ID,
		URL:               providerSession.URL,
		Quote:             *quote,
	}
	if !providerSession.ExpiresAt.IsZero() {
		expires := providerSession.ExpiresAt
		result.ExpiresAt = &expires
	}
	return result, nil
}

func describeStay(name string, q *pricingdomain.Quote) string {
	unit := "nights"
	if q.Nights == 1 {
		unit = "night"
	}
	return fmt.Sprintf("%s, %d %s (%s to %s)", name, q.Nights, unit, q.CheckIn, q.CheckOut)
}
