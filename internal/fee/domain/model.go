package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// DefaultPercent applies when a broker has no usable override.
	DefaultPercent = 10
	// DefaultWithholdingPercent is the flat withholding on short-term rental
	// revenue reported alongside a quote.
	DefaultWithholdingPercent = 21
)

// FeeOverride replaces the platform fee for a single broker. At most one row
// exists per broker.
type FeeOverride struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	BrokerID   snowflake.ID `json:"broker_id" gorm:"not null;uniqueIndex"`
	FeePercent int          `json:"fee_percent" gorm:"not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (FeeOverride) TableName() string { return "fee_overrides" }

// Split is the broker/platform division of a booking's base revenue.
type Split struct {
	FeePercent       int   `json:"fee_percent"`
	PlatformFeeCents int64 `json:"platform_fee_cents"`
	BrokerNetCents   int64 `json:"broker_net_cents"`
}

// Defaults are the platform-wide percentages. They can change at runtime.
type Defaults struct {
	FeePercent         int
	WithholdingPercent int
}

func ValidPercent(p int) bool {
	return p >= 0 && p <= 100
}

// SplitRevenue takes the floor for the platform and gives the remainder to the
// broker, so the two parts always add back to baseTotalCents.
func SplitRevenue(baseTotalCents int64, feePercent int) (Split, error) {
	if baseTotalCents < 0 {
		return Split{}, ErrInvalidAmount
	}
	if !ValidPercent(feePercent) {
		return Split{}, ErrInvalidFeePercent
	}
	platform := baseTotalCents * int64(feePercent) / 100
	return Split{
		FeePercent:       feePercent,
		PlatformFeeCents: platform,
		BrokerNetCents:   baseTotalCents - platform,
	}, nil
}

// WithholdingTax is informational and never part of the guest total.
func WithholdingTax(baseTotalCents int64, percent int) int64 {
	if baseTotalCents <= 0 || !ValidPercent(percent) {
		return 0
	}
	return baseTotalCents * int64(percent) / 100
}
