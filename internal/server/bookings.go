package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/notification/receipt"
)

type bookingView struct {
	bookingdomain.Booking
	DisplayStatus bookingdomain.Status `json:"display_status"`
}

func (s *Server) view(c *gin.Context, b bookingdomain.Booking) bookingView {
	return bookingView{Booking: b, DisplayStatus: b.DisplayStatus(s.bookingSvc.Today(c.Request.Context()))}
}

// GetBooking
// GET /api/bookings/:id
func (s *Server) GetBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := s.bookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, s.view(c, *b))
}

// ListPropertyBookings
// GET /api/properties/:id/bookings?status=confirmed,pending
func (s *Server) ListPropertyBookings(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var statuses []bookingdomain.Status
	for _, raw := range strings.Split(c.Query("status"), ",") {
		switch st := bookingdomain.Status(strings.TrimSpace(raw)); st {
		case "":
		case bookingdomain.StatusPending, bookingdomain.StatusConfirmed, bookingdomain.StatusCancelled:
			statuses = append(statuses, st)
		default:
			AbortWithError(c, newValidationError("status", "invalid_status", "unknown booking status "+string(st)))
			return
		}
	}

	rows, err := s.bookingSvc.ListByProperty(c.Request.Context(), bookingdomain.ListRequest{
		PropertyID: propertyID,
		Statuses:   statuses,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	out := make([]bookingView, 0, len(rows))
	for _, b := range rows {
		out = append(out, s.view(c, b))
	}
	respondList(c, out)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking
// POST /api/bookings/:id/cancel
func (s *Server) CancelBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	b, err := s.bookingSvc.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, s.view(c, *b))
}

// GetBookingReceipt
// GET /api/bookings/:id/receipt
func (s *Server) GetBookingReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	b, err := s.bookingSvc.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if b.Status != bookingdomain.StatusConfirmed {
		AbortWithError(c, bookingdomain.ErrReceiptNotReady)
		return
	}
	property, err := s.propertySvc.Get(ctx, b.PropertyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := receipt.Render(b, property.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="booking-%s.pdf"`, b.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
