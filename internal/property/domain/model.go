package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Property is a bookable listing owned by a broker and mirrored in the PMS.
type Property struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	BrokerID           snowflake.ID `json:"broker_id" gorm:"not null;index"`
	Name               string       `json:"name" gorm:"type:varchar(200);not null"`
	Slug               string       `json:"slug" gorm:"type:varchar(220);not null;uniqueIndex"`
	ProviderPropertyID string       `json:"provider_property_id" gorm:"type:varchar(64);not null"`
	City               string       `json:"city" gorm:"type:varchar(120);not null"`
	Country            string       `json:"country" gorm:"type:varchar(2);not null"`
	Currency           string       `json:"currency" gorm:"type:varchar(3);not null"`
	MaxGuests          int          `json:"max_guests" gorm:"not null;default:0"`

	// Own city-tax rule. When CityTaxCents is nil the (city, country) default
	// applies.
	CityTaxCents     *int64 `json:"city_tax_cents,omitempty"`
	CityTaxMaxNights *int   `json:"city_tax_max_nights,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Property) TableName() string { return "properties" }

type RegisterRequest struct {
	BrokerID           snowflake.ID `json:"broker_id"`
	Name               string       `json:"name"`
	ProviderPropertyID string       `json:"provider_property_id"`
	City               string       `json:"city"`
	Country            string       `json:"country"`
	Currency           string       `json:"currency"`
	MaxGuests          int          `json:"max_guests"`
	CityTaxCents       *int64       `json:"city_tax_cents"`
	CityTaxMaxNights   *int         `json:"city_tax_max_nights"`
}
