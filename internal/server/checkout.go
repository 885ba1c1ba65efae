package server

import (
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
)

type createCheckoutSessionRequest struct {
	Provider    string `json:"provider"`
	PropertyID  string `json:"property_id" binding:"required"`
	CheckIn     string `json:"check_in" binding:"required"`
	CheckOut    string `json:"check_out" binding:"required"`
	Guests      int    `json:"guests" binding:"required"`
	ExtrasCents int64  `json:"extras_cents"`
	GuestEmail  string `json:"guest_email" binding:"required,email"`
	GuestName   string `json:"guest_name"`
	SuccessURL  string `json:"success_url" binding:"required,http_url"`
	CancelURL   string `json:"cancel_url" binding:"required,http_url"`
}

// CreateCheckoutSession
// POST /api/checkout/sessions
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutSessionRequest
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

	session, err := s.checkoutSvc.CreateSession(c.Request.Context(), paymentdomain.CheckoutRequest{
		Provider:    req.Provider,
		PropertyID:  propertyID,
		Range:       stay,
		Guests:      req.Guests,
		ExtrasCents: req.ExtrasCents,
		GuestEmail:  req.GuestEmail,
		GuestName:   req.GuestName,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, session)
}
