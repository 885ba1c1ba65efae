package server

import (
	"github.com/gin-gonic/gin"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
)

const maxRatesWindow = 366

type quoteRequest struct {
	PropertyID  string `json:"property_id" binding:"required"`
	CheckIn     string `json:"check_in" binding:"required"`
	CheckOut    string `json:"check_out" binding:"required"`
	Guests      int    `json:"guests" binding:"required"`
	ExtrasCents int64  `json:"extras_cents"`
}

// CreateQuote
// POST /api/quotes
func (s *Server) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	propertyID, err := parseID("property_id", req.PropertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	stay, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	quote, err := s.pricingSvc.Quote(c.Request.Context(), pricingdomain.QuoteRequest{
		PropertyID:  propertyID,
		Range:       stay,
		Guests:      req.Guests,
		ExtrasCents: req.ExtrasCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, quote)
}

// GetRates
// GET /api/properties/:id/rates?start=YYYY-MM-DD&end=YYYY-MM-DD
func (s *Server) GetRates(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	start, err := calendar.Parse(c.Query("start"))
	if err != nil {
		AbortWithError(c, newValidationError("start", "invalid_date", "start must be YYYY-MM-DD"))
		return
	}
	end, err := calendar.Parse(c.Query("end"))
	if err != nil {
		AbortWithError(c, newValidationError("end", "invalid_date", "end must be YYYY-MM-DD"))
		return
	}
	if end.Before(start) || start.DaysUntil(end) >= maxRatesWindow {
		AbortWithError(c, newValidationError("end", "invalid_range", "end must be on or after start and within a year"))
		return
	}

	property, err := s.propertySvc.Get(c.Request.Context(), propertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rates, err := s.ratesSvc.GetRates(c.Request.Context(), ratesdomain.Request{
		ProviderPropertyID: property.ProviderPropertyID,
		Start:              start,
		End:                end,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{
		"property_id": property.ID,
		"currency":    property.Currency,
		"rates":       rates,
	})
}
