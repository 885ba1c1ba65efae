package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
	Cfg   config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock

	defaultPercent     atomic.Int64
	withholdingPercent atomic.Int64
}

func New(p Params) domain.Service {
	svc := &Service{
		db:    p.DB,
		log:   p.Log.Named("fee.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
	svc.SetDefaults(domain.Defaults{
		FeePercent:         p.Cfg.Fees.DefaultPercent,
		WithholdingPercent: p.Cfg.Fees.WithholdingPercent,
	})
	return svc
}

// ResolveFeePercent returns the broker override when it holds a valid percent
// and the platform default otherwise. Only lookup failures are errors.
func (s *Service) ResolveFeePercent(ctx context.Context, brokerID snowflake.ID) (int, error) {
	fallback := int(s.defaultPercent.Load())
	if brokerID == 0 {
		return fallback, nil
	}

	override, err := s.repo.FindByBrokerID(ctx, s.db, brokerID)
	if err != nil {
		return 0, err
	}
	if override == nil {
		return fallback, nil
	}
	if !domain.ValidPercent(override.FeePercent) {
		s.log.Warn("ignoring invalid fee override",
			zap.String("broker_id", brokerID.String()),
			zap.Int("fee_percent", override.FeePercent))
		return fallback, nil
	}
	return override.FeePercent, nil
}

func (s *Service) Defaults() domain.Defaults {
	return domain.Defaults{
		FeePercent:         int(s.defaultPercent.Load()),
		WithholdingPercent: int(s.withholdingPercent.Load()),
	}
}

// SetDefaults swaps the platform percentages. Out-of-range values keep the
// built-in defaults.
func (s *Service) SetDefaults(d domain.Defaults) {
	if !domain.ValidPercent(d.FeePercent) {
		s.log.Warn("invalid default fee percent, using built-in", zap.Int("fee_percent", d.FeePercent))
		d.FeePercent = domain.DefaultPercent
	}
	if !domain.ValidPercent(d.WithholdingPercent) {
		s.log.Warn("invalid withholding percent, using built-in", zap.Int("withholding_percent", d.WithholdingPercent))
		d.WithholdingPercent = domain.DefaultWithholdingPercent
	}
	s.defaultPercent.Store(int64(d.FeePercent))
	s.withholdingPercent.Store(int64(d.WithholdingPercent))
}

func (s *Service) SetOverride(ctx context.Context, brokerID snowflake.ID, feePercent int) (*domain.FeeOverride, error) {
	if brokerID == 0 {
		return nil, domain.ErrInvalidBroker
	}
	if !domain.ValidPercent(feePercent) {
		return nil, domain.ErrInvalidFeePercent
	}

	now := s.now(ctx)
	override := &domain.FeeOverride{
		ID:         s.genID.Generate(),
		BrokerID:   brokerID,
		FeePercent: feePercent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Upsert(ctx, s.db, override); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByBrokerID(ctx, s.db, brokerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrOverrideNotFound
	}
	return stored, nil
}

func (s *Service) GetOverride(ctx context.Context, brokerID snowflake.ID) (*domain.FeeOverride, error) {
	if brokerID == 0 {
		return nil, domain.ErrInvalidBroker
	}
	override, err := s.repo.FindByBrokerID(ctx, s.db, brokerID)
	if err != nil {
		return nil, err
	}
	if override == nil {
		return nil, domain.ErrOverrideNotFound
	}
	return override, nil
}

func (s *Service) DeleteOverride(ctx context.Context, brokerID snowflake.ID) error {
	if brokerID == 0 {
		return domain.ErrInvalidBroker
	}
	affected, err := s.repo.DeleteByBrokerID(ctx, s.db, brokerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrOverrideNotFound
	}
	return nil
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now(ctx).UTC()
}
