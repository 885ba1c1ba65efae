package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CityTaxDefault is the tax a municipality levies per guest per night, used
// when a property carries no rule of its own. City is stored lower-cased.
type CityTaxDefault struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	City        string       `json:"city" gorm:"type:varchar(120);not null;uniqueIndex:ux_city_tax_location"`
	Country     string       `json:"country" gorm:"type:varchar(2);not null;uniqueIndex:ux_city_tax_location"`
	AmountCents int64        `json:"amount_cents" gorm:"not null"`
	MaxNights   *int         `json:"max_nights,omitempty"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (CityTaxDefault) TableName() string { return "city_tax_defaults" }

type UpsertRequest struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	AmountCents int64  `json:"amount_cents"`
	MaxNights   *int   `json:"max_nights"`
}
