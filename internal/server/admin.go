package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	taxdomain "github.com/luciodale/booking-portal-sub002/internal/tax/domain"
)

// GetProperty
// GET /api/properties/:id
func (s *Server) GetProperty(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := s.propertySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, p)
}

// RegisterProperty
// POST /api/admin/properties
func (s *Server) RegisterProperty(c *gin.Context) {
	var req propertydomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	p, err := s.propertySvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, p)
}

type feeOverrideRequest struct {
	FeePercent *int `json:"fee_percent" binding:"required"`
}

// GetFeeOverride
// GET /api/admin/brokers/:id/fee-override
func (s *Server) GetFeeOverride(c *gin.Context) {
	brokerID, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	override, err := s.feeSvc.GetOverride(ctx, brokerID)
	if err != nil && !errors.Is(err, feedomain.ErrOverrideNotFound) {
		AbortWithError(c, err)
		return
	}
	effective, err := s.feeSvc.ResolveFeePercent(ctx, brokerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"override": override, "effective_fee_percent": effective})
}

// PutFeeOverride
// PUT /api/admin/brokers/:id/fee-override
func (s *Server) PutFeeOverride(c *gin.Context) {
	brokerID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req feeOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("fee_percent", "invalid_fee_percent", "fee_percent must be an integer between 0 and 100"))
		return
	}
	override, err := s.feeSvc.SetOverride(c.Request.Context(), brokerID, *req.FeePercent)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, override)
}

// DeleteFeeOverride
// DELETE /api/admin/brokers/:id/fee-override
func (s *Server) DeleteFeeOverride(c *gin.Context) {
	brokerID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.feeSvc.DeleteOverride(c.Request.Context(), brokerID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCityTaxes
// GET /api/admin/city-taxes?city=&country=
func (s *Server) GetCityTaxes(c *gin.Context) {
	city, country := c.Query("city"), c.Query("country")
	ctx := c.Request.Context()
	if city != "" {
		row, err := s.taxSvc.Get(ctx, city, country)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		respondData(c, row)
		return
	}
	rows, err := s.taxSvc.List(ctx, country)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, rows)
}

// PutCityTax
// PUT /api/admin/city-taxes
func (s *Server) PutCityTax(c *gin.Context) {
	var req taxdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	row, err := s.taxSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, row)
}

// ListSettlementFlags
// GET /api/admin/settlement-flags?limit=
func (s *Server) ListSettlementFlags(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}
	flags, err := s.flagSvc.ListOpen(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, flags)
}

// ResolveSettlementFlag
// POST /api/admin/settlement-flags/:id/resolve
func (s *Server) ResolveSettlementFlag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.flagSvc.Resolve(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
