package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxReasonLen = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("booking.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	b, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *Service) ListByProperty(ctx context.Context, req domain.ListRequest) ([]domain.Booking, error) {
	return s.repo.ListByProperty(ctx, s.db, req.PropertyID, req.Statuses)
}

// Cancel uses the same conditional-update discipline as settlement: each
// attempt only matches the status it expects, so a concurrent confirmation
// and cancellation cannot both win.
func (s *Service) Cancel(ctx context.Context, id snowflake.ID, reason string) (*domain.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.StatusCancelled {
		return b, nil
	}
	if b.DisplayStatus(s.Today(ctx)) == domain.StatusCompleted {
		return nil, domain.ErrNotCancellable
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = domain.CancelReasonBroker
	}
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}
	now := s.clock.Now(ctx).UTC()

	affected, err := s.repo.Cancel(ctx, s.db, id, []domain.Status{domain.StatusPending}, domain.Cancellation{
		Reason:      reason,
		CancelledAt: now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// paid already: the guest is owed a refund
		affected, err = s.repo.Cancel(ctx, s.db, id, []domain.Status{domain.StatusConfirmed}, domain.Cancellation{
			Reason:      reason,
			NeedsRefund: true,
			CancelledAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 && current.Status != domain.StatusCancelled {
		return nil, domain.ErrNotCancellable
	}

	if affected > 0 {
		s.log.Info("booking cancelled",
			zap.String("booking_id", id.String()),
			zap.String("property_id", current.PropertyID.String()),
			zap.String("reason", reason),
			zap.Bool("needs_refund", current.NeedsRefund))
	}
	return current, nil
}

func (s *Service) Today(ctx context.Context) calendar.Date {
	return calendar.FromTime(s.clock.Now(ctx))
}
