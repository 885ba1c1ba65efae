package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
)

type QuoteRequest struct {
	PropertyID  snowflake.ID   `json:"property_id"`
	Range       calendar.Range `json:"range"`
	Guests      int            `json:"guests"`
	ExtrasCents int64          `json:"extras_cents"`
}

type Service interface {
	// Quote validates availability against live rates and prices the stay.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}
