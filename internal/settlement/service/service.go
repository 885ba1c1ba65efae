package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	notificationdomain "github.com/luciodale/booking-portal-sub002/internal/notification/domain"
	"github.com/luciodale/booking-portal-sub002/internal/observability"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	"github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Bookings   bookingdomain.Repository
	Properties propertydomain.Repository
	Fees       feedomain.Resolver
	Flags      domain.FlagRepository
	Notifier   notificationdomain.Notifier `optional:"true"`
	Metrics    *observability.Metrics      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	bookings   bookingdomain.Repository
	properties propertydomain.Repository
	fees       feedomain.Resolver
	flags      domain.FlagRepository
	notifier   notificationdomain.Notifier
	metrics    *observability.Metrics
	tracer     trace.Tracer
}

func New(p Params) *Service {
	// nil notifier means notices are disabled
	notifier := p.Notifier
	if _, ok := notifier.(notificationdomain.Noop); ok {
		notifier = nil
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("settlement.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		bookings:   p.Bookings,
		properties: p.Properties,
		fees:       p.Fees,
		flags:      p.Flags,
		notifier:   notifier,
		metrics:    metrics,
		tracer:     otel.Tracer("bookingportal/settlement"),
	}
}

// Settle drives pending -> confirmed for paid events. The status change is a
// conditional update inside a transaction that holds the property row, so a
// duplicate delivery and a competing booking of the same dates both observe
// the first writer. The notice is sent after commit and cannot undo it.
func (s *Service) Settle(ctx context.Context, ev *paymentdomain.PaymentEvent) (*domain.Result, error) {
	if ev == nil || ev.Provider == "" || (ev.ProviderSessionID == "" && ev.ClientReferenceID == "") {
		return nil, domain.ErrInvalidEvent
	}

	ctx, span := s.tracer.Start(ctx, "settlement.Settle", trace.WithAttributes(
		attribute.String("payment.provider", ev.Provider),
		attribute.String("payment.event_type", ev.Type),
		attribute.String("payment.session_id", ev.ProviderSessionID),
	))
	defer span.End()

	res, notice, err := s.settle(ctx, ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("settlement failed",
			zap.String("provider", ev.Provider),
			zap.String("provider_event_id", ev.ProviderEventID),
			zap.String("provider_session_id", ev.ProviderSessionID),
			zap.Error(err))
		return nil, err
	}

	if notice != nil {
		res.Notification = s.notify(ctx, *notice)
		s.log.Info("booking confirmed",
			zap.String("booking_id", res.BookingID.String()),
			zap.Bool("notice_attempted", res.Notification.Attempted),
			zap.Bool("notice_sent", res.Notification.Sent()))
	}

	s.metrics.SettlementOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	span.SetAttributes(attribute.String("settlement.outcome", res.Outcome.String()))
	return res, nil
}

func (s *Service) settle(ctx context.Context, ev *paymentdomain.PaymentEvent) (*domain.Result, *notificationdomain.Notice, error) {
	switch ev.Type {
	case paymentdomain.EventTypeCheckoutCompleted, paymentdomain.EventTypeAsyncPaymentSucceeded:
	default:
		return &domain.Result{Outcome: domain.OutcomeIgnored}, nil, nil
	}

	booking, err := s.findBooking(ctx, s.db, ev)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		s.log.Warn("payment event does not match any booking",
			zap.String("provider", ev.Provider),
			zap.String("provider_event_id", ev.ProviderEventID),
			zap.String("provider_session_id", ev.ProviderSessionID))
		return &domain.Result{Outcome: domain.OutcomeNotFound}, nil, nil
	}

	result := &domain.Result{BookingID: booking.ID}

	if !ev.Paid() {
		s.log.Info("checkout completed without settled funds",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_status", ev.PaymentStatus))
		result.Outcome = domain.OutcomeUnpaid
		return result, nil, nil
	}

	switch booking.Status {
	case bookingdomain.StatusConfirmed:
		result.Outcome = domain.OutcomeAlreadyConfirmed
		return result, nil, nil
	case bookingdomain.StatusCancelled:
		if err := s.cancelled(ctx, s.db, booking, ev, result); err != nil {
			return nil, nil, err
		}
		return result, nil, nil
	}

	// Fee percent is resolved now, not at quote time.
	feePercent, err := s.fees.ResolveFeePercent(ctx, booking.BrokerID)
	if err != nil {
		return nil, nil, err
	}
	split, err := feedomain.SplitRevenue(booking.BaseTotalCents, feePercent)
	if err != nil {
		return nil, nil, err
	}

	stay, err := booking.Range()
	if err != nil {
		return nil, nil, fmt.Errorf("booking %s: %w", booking.ID, err)
	}

	var property *propertydomain.Property
	now := s.clock.Now(ctx).UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err = s.properties.LockByID(ctx, tx, booking.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return fmt.Errorf("booking %s: %w", booking.ID, propertydomain.ErrNotFound)
		}

		overlap, err := s.bookings.HasConfirmedOverlap(ctx, tx, booking.PropertyID, stay, booking.ID)
		if err != nil {
			return err
		}
		if overlap {
			n, err := s.bookings.Cancel(ctx, tx, booking.ID, []bookingdomain.Status{bookingdomain.StatusPending}, bookingdomain.Cancellation{
				Reason:      bookingdomain.CancelReasonSettlementConflict,
				NeedsRefund: true,
				CancelledAt: now,
			})
			if err != nil {
				return err
			}
			if n == 0 {
				return s.lostRace(ctx, tx, booking.ID, ev, result)
			}
			if err := s.insertFlag(ctx, tx, booking, domain.FlagKindOverlapConflict, ev, map[string]any{
				"check_in":  booking.CheckIn,
				"check_out": booking.CheckOut,
			}); err != nil {
				return err
			}
			result.Outcome = domain.OutcomeConflict
			return nil
		}

		n, err := s.bookings.Confirm(ctx, tx, booking.ID, bookingdomain.Confirmation{
			FeePercent:       split.FeePercent,
			PlatformFeeCents: split.PlatformFeeCents,
			BrokerNetCents:   split.BrokerNetCents,
			PaymentIntentID:  ev.PaymentIntentID,
			ConfirmedAt:      now,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return s.lostRace(ctx, tx, booking.ID, ev, result)
		}
		result.Outcome = domain.OutcomeConfirmed
		result.Split = &split
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	switch result.Outcome {
	case domain.OutcomeConflict:
		s.log.Warn("settlement conflict, booking cancelled for refund",
			zap.String("booking_id", booking.ID.String()),
			zap.String("property_id", booking.PropertyID.String()),
			zap.String("provider_session_id", booking.ProviderSessionID),
			zap.String("check_in", booking.CheckIn),
			zap.String("check_out", booking.CheckOut))
		return result, nil, nil
	case domain.OutcomeConfirmed:
		s.log.Info("booking confirmed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("property_id", booking.PropertyID.String()),
			zap.Int("fee_percent", split.FeePercent),
			zap.Int64("platform_fee_cents", split.PlatformFeeCents),
			zap.Int64("broker_net_cents", split.BrokerNetCents))
		return result, buildNotice(booking, property, split, now), nil
	default:
		return result, nil, nil
	}
}

// lostRace reloads a booking whose conditional update matched nothing and
// records what the competing writer left behind.
func (s *Service) lostRace(ctx context.Context, tx *gorm.DB, id snowflake.ID, ev *paymentdomain.PaymentEvent, result *domain.Result) error {
	current, err := s.bookings.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("booking %s: %w", id, bookingdomain.ErrNotFound)
	}
	switch current.Status {
	case bookingdomain.StatusConfirmed:
		result.Outcome = domain.OutcomeAlreadyConfirmed
		return nil
	case bookingdomain.StatusCancelled:
		return s.cancelled(ctx, tx, current, ev, result)
	default:
		return fmt.Errorf("booking %s: unexpected status %q", id, current.Status)
	}
}

func (s *Service) findBooking(ctx context.Context, db *gorm.DB, ev *paymentdomain.PaymentEvent) (*bookingdomain.Booking, error) {
	if ev.ProviderSessionID != "" {
		b, err := s.bookings.FindByProviderSession(ctx, db, ev.Provider, ev.ProviderSessionID)
		if err != nil || b != nil {
			return b, err
		}
	}
	if ev.ClientReferenceID == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(ev.ClientReferenceID)
	if err != nil {
		return nil, nil
	}
	b, err := s.bookings.FindByID(ctx, db, id)
	if err != nil || b == nil {
		return nil, err
	}
	if b.Provider != ev.Provider {
		return nil, nil
	}
	return b, nil
}

// cancelled handles money arriving for a cancelled booking. A booking this
// handler cancelled for overlap already carries its flag.
func (s *Service) cancelled(ctx context.Context, db *gorm.DB, b *bookingdomain.Booking, ev *paymentdomain.PaymentEvent, result *domain.Result) error {
	if b.CancelReason == bookingdomain.CancelReasonSettlementConflict {
		result.Outcome = domain.OutcomeConflict
		return nil
	}
	result.Outcome = domain.OutcomeAfterCancellation
	s.log.Warn("payment received for cancelled booking",
		zap.String("booking_id", b.ID.String()),
		zap.String("property_id", b.PropertyID.String()),
		zap.String("provider_session_id", b.ProviderSessionID),
		zap.String("cancel_reason", b.CancelReason))
	return s.insertFlag(ctx, db, b, domain.FlagKindPaymentAfterCancel, ev, map[string]any{
		"cancel_reason": b.CancelReason,
	})
}

func (s *Service) insertFlag(ctx context.Context, db *gorm.DB, b *bookingdomain.Booking, kind string, ev *paymentdomain.PaymentEvent, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	amount := ev.Amount
	if amount == 0 {
		amount = b.TotalCents
	}
	currency := ev.Currency
	if currency == "" {
		currency = b.Currency
	}
	_, err = s.flags.Insert(ctx, db, &domain.Flag{
		ID:                s.genID.Generate(),
		BookingID:         b.ID,
		PropertyID:        b.PropertyID,
		Kind:              kind,
		Provider:          ev.Provider,
		ProviderEventID:   ev.ProviderEventID,
		ProviderSessionID: ev.ProviderSessionID,
		PaymentIntentID:   ev.PaymentIntentID,
		AmountCents:       amount,
		Currency:          currency,
		Detail:            datatypes.JSON(raw),
		CreatedAt:         s.clock.Now(ctx).UTC(),
	})
	return err
}

func (s *Service) notify(ctx context.Context, n notificationdomain.Notice) domain.Notification {
	if s.notifier == nil {
		return domain.Notification{}
	}
	err := s.notifier.NotifyConfirmed(ctx, n)
	if err != nil {
		s.metrics.NotificationErrors.Inc()
		s.log.Warn("confirmation notice not dispatched",
			zap.String("booking_id", n.BookingID.String()),
			zap.String("property_id", n.PropertyID.String()),
			zap.Error(err))
	}
	return domain.Notification{Attempted: true, Err: err}
}

func buildNotice(b *bookingdomain.Booking, p *propertydomain.Property, split feedomain.Split, at time.Time) *notificationdomain.Notice {
	n := &notificationdomain.Notice{
		BookingID:        b.ID,
		PropertyID:       b.PropertyID,
		BrokerID:         b.BrokerID,
		GuestEmail:       b.GuestEmail,
		GuestName:        b.GuestName,
		Guests:           b.Guests,
		CheckIn:          b.CheckIn,
		CheckOut:         b.CheckOut,
		Nights:           b.Nights,
		TotalCents:       b.TotalCents,
		PlatformFeeCents: split.PlatformFeeCents,
		BrokerNetCents:   split.BrokerNetCents,
		Currency:         b.Currency,
		ConfirmedAt:      at,
	}
	if p != nil {
		n.PropertyName = p.Name
	}
	return n
}

type FlagServiceParams struct {
	fx.In

	DB    *gorm.DB
	Repo  domain.FlagRepository
	Clock clock.Clock
}

type flagService struct {
	db    *gorm.DB
	repo  domain.FlagRepository
	clock clock.Clock
}

func NewFlagService(p FlagServiceParams) domain.FlagService {
	return &flagService{db: p.DB, repo: p.Repo, clock: p.Clock}
}

func (s *flagService) ListOpen(ctx context.Context, limit int) ([]domain.Flag, error) {
	return s.repo.ListOpen(ctx, s.db, limit)
}

func (s *flagService) Resolve(ctx context.Context, id snowflake.ID) error {
	n, err := s.repo.Resolve(ctx, s.db, id, s.clock.Now(ctx).UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrFlagNotFound
	}
	return nil
}
