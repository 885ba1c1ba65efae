package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidFeePercent = errors.New("invalid_fee_percent")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidBroker     = errors.New("invalid_broker")
	ErrOverrideNotFound  = errors.New("fee_override_not_found")
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, override *FeeOverride) error
	FindByBrokerID(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) (*FeeOverride, error)
	DeleteByBrokerID(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) (int64, error)
}

// Resolver answers the fee percent that applies to a broker right now.
type Resolver interface {
	ResolveFeePercent(ctx context.Context, brokerID snowflake.ID) (int, error)
	Defaults() Defaults
}

type Service interface {
	Resolver
	SetOverride(ctx context.Context, brokerID snowflake.ID, feePercent int) (*FeeOverride, error)
	GetOverride(ctx context.Context, brokerID snowflake.ID) (*FeeOverride, error)
	DeleteOverride(ctx context.Context, brokerID snowflake.ID) error
	SetDefaults(d Defaults)
}
