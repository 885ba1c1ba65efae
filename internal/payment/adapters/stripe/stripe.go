package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const providerName = "stripe"

// SessionCreator is the part of the Stripe client used to open checkouts.
type SessionCreator interface {
	New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
}

type Factory struct {
	backends *stripego.Backends
}

func NewFactory() *Factory {
	return &Factory{}
}

// NewFactoryWithBackends points the API client at custom backends.
func NewFactoryWithBackends(backends *stripego.Backends) *Factory {
	return &Factory{backends: backends}
}

func (f *Factory) Provider() string {
	return providerName
}

func (f *Factory) NewAdapter(cfg paymentdomain.AdapterConfig) (paymentdomain.PaymentAdapter, error) {
	secret, ok := readString(cfg.Config, "webhook_secret")
	if !ok {
		return nil, paymentdomain.ErrInvalidConfig
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}

	// API key is optional for webhook-only usage
	apiKey, _ := readString(cfg.Config, "api_key")
	apiKey = strings.TrimSpace(apiKey)

	var sessions SessionCreator
	if apiKey != "" {
		sessions = client.New(apiKey, f.backends).CheckoutSessions
	}
	return New(secret, sessions), nil
}

type Adapter struct {
	webhookSecret string
	tolerance     time.Duration
	sessions      SessionCreator
}

func New(webhookSecret string, sessions SessionCreator) *Adapter {
	return &Adapter{
		webhookSecret: webhookSecret,
		tolerance:     webhook.DefaultTolerance,
		sessions:      sessions,
	}
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, sigHeader, a.webhookSecret, a.tolerance); err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var event stripego.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" || event.Data == nil {
		return nil, paymentdomain.ErrInvalidEvent
	}

	var eventType string
	switch string(event.Type) {
	case "checkout.session.completed":
		eventType = paymentdomain.EventTypeCheckoutCompleted
	case "checkout.session.async_payment_succeeded":
		eventType = paymentdomain.EventTypeAsyncPaymentSucceeded
	case "checkout.session.async_payment_failed":
		eventType = paymentdomain.EventTypeAsyncPaymentFailed
	case "checkout.session.expired":
		eventType = paymentdomain.EventTypeCheckoutExpired
	default:
		return nil, paymentdomain.ErrEventIgnored
	}

	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	var paymentIntentID string
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	return &paymentdomain.PaymentEvent{
		Provider:          providerName,
		ProviderEventID:   event.ID,
		Type:              eventType,
		ProviderSessionID: session.ID,
		PaymentIntentID:   paymentIntentID,
		PaymentStatus:     string(session.PaymentStatus),
		ClientReferenceID: session.ClientReferenceID,
		Amount:            session.AmountTotal,
		Currency:          strings.ToUpper(string(session.Currency)),
		OccurredAt:        timestamp(event.Created, session.Created),
		RawPayload:        payload,
	}, nil
}

// CreateCheckoutSession makes a single call; the Stripe client's own retry
// policy is the only retry.
func (a *Adapter) CreateCheckoutSession(ctx context.Context, input paymentdomain.CheckoutSessionInput) (*paymentdomain.ProviderCheckoutSession, error) {
	if a.sessions == nil {
		return nil, paymentdomain.ErrCheckoutDisabled
	}
	if input.AmountCents <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}
	if len(strings.TrimSpace(input.Currency)) != 3 {
		return nil, paymentdomain.ErrInvalidCurrency
	}

	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(input.SuccessURL),
		CancelURL:         stripego.String(input.CancelURL),
		ClientReferenceID: stripego.String(input.Reference),
		LineItems: []*stripego.CheckoutSessionLineItemParams{{
			Quantity: stripego.Int64(1),
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripego.String(strings.ToLower(input.Currency)),
				UnitAmount: stripego.Int64(input.AmountCents),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripego.String(input.Description),
				},
			},
		}},
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(input.CustomerEmail)
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	session, err := a.sessions.New(params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) {
			return nil, errors.Join(paymentdomain.ErrCheckoutFailed, errors.New(stripeErr.Msg))
		}
		return nil, errors.Join(paymentdomain.ErrCheckoutFailed, err)
	}

	out := &paymentdomain.ProviderCheckoutSession{
		ID:       session.ID,
		Provider: providerName,
		URL:      session.URL,
	}
	if session.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(session.ExpiresAt, 0).UTC()
	}
	return out, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}

func readString(config map[string]any, key string) (string, bool) {
	value, ok := config[key]
	if !ok {
		return "", false
	}
	switch cast := value.(type) {
	case string:
		return cast, true
	default:
		return "", false
	}
}
