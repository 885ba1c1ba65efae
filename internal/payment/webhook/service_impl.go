package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/observability"
	"github.com/luciodale/booking-portal-sub002/internal/payment/adapters"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	settlementdomain "github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
	outcomeRejected  = "rejected"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Adapters   *adapters.Registry
	Events     paymentdomain.EventRepository
	Settlement settlementdomain.Handler
	Metrics    *observability.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	adapters   *adapters.Registry
	events     paymentdomain.EventRepository
	settlement settlementdomain.Handler
	metrics    *observability.Metrics
}

func NewService(p Params) paymentdomain.Service {
	metrics := p.Metrics
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.webhook"),
		genID:      p.GenID,
		clock:      p.Clock,
		adapters:   p.Adapters,
		events:     p.Events,
		settlement: p.Settlement,
		metrics:    metrics,
	}
}

// IngestWebhook verifies, records and settles one provider delivery. A nil
// error tells the caller to acknowledge; any persistence failure is returned
// so the provider redelivers.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (paymentdomain.Ack, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.Ack{}, paymentdomain.ErrInvalidProvider
	}
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		return paymentdomain.Ack{}, paymentdomain.ErrProviderNotFound
	}
	if !json.Valid(payload) {
		s.count(provider, outcomeRejected)
		return paymentdomain.Ack{}, paymentdomain.ErrInvalidPayload
	}

	adapter, err := s.adapters.Adapter(provider)
	if err != nil {
		return paymentdomain.Ack{}, err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.count(provider, outcomeRejected)
		s.log.Warn("webhook signature rejected",
			zap.String("provider", provider),
			zap.Int("payload_size", len(payload)),
			zap.Error(err))
		return paymentdomain.Ack{}, err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.log.Debug("webhook event ignored", zap.String("provider", provider))
			s.count(provider, outcomeIgnored)
			return paymentdomain.Ack{Outcome: outcomeIgnored}, nil
		}
		s.count(provider, outcomeRejected)
		s.log.Error("webhook parse failed",
			zap.String("provider", provider),
			zap.Int("payload_size", len(payload)),
			zap.Error(err))
		return paymentdomain.Ack{}, err
	}
	event.Provider = provider
	ack := paymentdomain.Ack{EventID: event.ProviderEventID}

	// 1. Record the delivery
	inserted, err := s.events.Insert(ctx, s.db, &paymentdomain.EventRecord{
		ID:                s.genID.Generate(),
		Provider:          provider,
		ProviderEventID:   event.ProviderEventID,
		EventType:         event.Type,
		ProviderSessionID: event.ProviderSessionID,
		Payload:           datatypes.JSON(maskPayload(payload)),
		ReceivedAt:        s.clock.Now(ctx).UTC(),
	})
	if err != nil {
		s.count(provider, outcomeError)
		s.log.Error("failed to record payment event",
			zap.String("provider", provider),
			zap.String("provider_event_id", event.ProviderEventID),
			zap.Error(err))
		return paymentdomain.Ack{}, err
	}
	if !inserted {
		existing, err := s.events.FindByProviderEventID(ctx, s.db, provider, event.ProviderEventID)
		if err != nil {
			s.count(provider, outcomeError)
			return paymentdomain.Ack{}, err
		}
		if existing != nil && existing.ProcessedAt != nil {
			s.log.Info("duplicate webhook delivery",
				zap.String("provider", provider),
				zap.String("provider_event_id", event.ProviderEventID),
				zap.String("outcome", existing.Outcome))
			s.count(provider, outcomeDuplicate)
			ack.Outcome = existing.Outcome
			return ack, nil
		}
		// A previous attempt failed before finishing; settle again.
	}

	// 2. Settle
	result, err := s.settlement.Settle(ctx, event)
	if err != nil {
		s.count(provider, outcomeError)
		return paymentdomain.Ack{}, err
	}
	ack.Outcome = result.Outcome.String()

	// 3. Mark processed
	if err := s.events.MarkProcessed(ctx, s.db, provider, event.ProviderEventID, ack.Outcome, s.clock.Now(ctx).UTC()); err != nil {
		s.count(provider, outcomeError)
		s.log.Error("failed to mark payment event processed",
			zap.String("provider", provider),
			zap.String("provider_event_id", event.ProviderEventID),
			zap.Error(err))
		return paymentdomain.Ack{}, err
	}

	s.count(provider, ack.Outcome)
	s.log.Info("webhook processed",
		zap.String("provider", provider),
		zap.String("provider_event_id", event.ProviderEventID),
		zap.String("event_type", event.Type),
		zap.String("outcome", ack.Outcome))
	return ack, nil
}

func (s *Service) count(provider, outcome string) {
	s.metrics.WebhookEvents.WithLabelValues(provider, outcome).Inc()
}

// maskPayload blanks card and address details before the payload is stored.
func maskPayload(raw []byte) []byte {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	maskMap(obj)
	masked, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return masked
}

func maskMap(m map[string]any) {
	for k, v := range m {
		switch strings.ToLower(k) {
		case "card", "billing_details", "shipping_details", "payment_method_details", "customer_details":
			m[k] = "***"
		default:
			if nested, ok := v.(map[string]any); ok {
				maskMap(nested)
			} else if arr, ok := v.([]any); ok {
				for _, item := range arr {
					if itemMap, ok := item.(map[string]any); ok {
						maskMap(itemMap)
					}
				}
			}
		}
	}
}
