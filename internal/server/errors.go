package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	feedomain "github.com/luciodale/booking-portal-sub002/internal/fee/domain"
	paymentdomain "github.com/luciodale/booking-portal-sub002/internal/payment/domain"
	pricingdomain "github.com/luciodale/booking-portal-sub002/internal/pricing/domain"
	propertydomain "github.com/luciodale/booking-portal-sub002/internal/property/domain"
	ratesdomain "github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	settlementdomain "github.com/luciodale/booking-portal-sub002/internal/settlement/domain"
	taxdomain "github.com/luciodale/booking-portal-sub002/internal/tax/domain"
)

// APIError is the body of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Night   string `json:"night,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

var ErrInternal = &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
}

type statusRule struct {
	err    error
	status int
}

// Order matters: a blocked night also matches ErrDateRangeUnavailable.
var statusRules = []statusRule{
	{bookingdomain.ErrNotFound, http.StatusNotFound},
	{propertydomain.ErrNotFound, http.StatusNotFound},
	{taxdomain.ErrNotFound, http.StatusNotFound},
	{feedomain.ErrOverrideNotFound, http.StatusNotFound},
	{settlementdomain.ErrFlagNotFound, http.StatusNotFound},
	{paymentdomain.ErrProviderNotFound, http.StatusNotFound},

	{pricingdomain.ErrNightUnavailable, http.StatusConflict},
	{pricingdomain.ErrDateRangeUnavailable, http.StatusConflict},
	{bookingdomain.ErrDatesTaken, http.StatusConflict},
	{bookingdomain.ErrNotCancellable, http.StatusConflict},
	{bookingdomain.ErrReceiptNotReady, http.StatusConflict},
	{bookingdomain.ErrDuplicateSession, http.StatusConflict},

	{pricingdomain.ErrMissingRateData, http.StatusUnprocessableEntity},
	{pricingdomain.ErrBelowMinimumStay, http.StatusUnprocessableEntity},
	{pricingdomain.ErrInvalidRange, http.StatusUnprocessableEntity},
	{pricingdomain.ErrInvalidGuests, http.StatusUnprocessableEntity},
	{pricingdomain.ErrInvalidExtras, http.StatusUnprocessableEntity},
	{pricingdomain.ErrInvalidCityTaxRule, http.StatusUnprocessableEntity},
	{calendar.ErrInvalidRange, http.StatusUnprocessableEntity},

	{ratesdomain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
	{paymentdomain.ErrCheckoutFailed, http.StatusBadGateway},
	{paymentdomain.ErrCheckoutDisabled, http.StatusServiceUnavailable},

	{paymentdomain.ErrInvalidSignature, http.StatusBadRequest},
	{paymentdomain.ErrInvalidPayload, http.StatusBadRequest},
	{paymentdomain.ErrInvalidEvent, http.StatusBadRequest},
	{paymentdomain.ErrInvalidProvider, http.StatusBadRequest},
	{paymentdomain.ErrInvalidURL, http.StatusBadRequest},
	{paymentdomain.ErrInvalidAmount, http.StatusBadRequest},
	{paymentdomain.ErrInvalidCurrency, http.StatusBadRequest},
	{ratesdomain.ErrInvalidPropertyID, http.StatusBadRequest},
	{calendar.ErrInvalidDate, http.StatusBadRequest},
	{bookingdomain.ErrInvalidEmail, http.StatusBadRequest},
	{bookingdomain.ErrInvalidBooking, http.StatusBadRequest},
	{feedomain.ErrInvalidFeePercent, http.StatusBadRequest},
	{feedomain.ErrInvalidAmount, http.StatusBadRequest},
	{feedomain.ErrInvalidBroker, http.StatusBadRequest},
	{taxdomain.ErrInvalidLocation, http.StatusBadRequest},
	{taxdomain.ErrInvalidAmount, http.StatusBadRequest},
	{taxdomain.ErrInvalidMaxNights, http.StatusBadRequest},
	{propertydomain.ErrInvalidBroker, http.StatusBadRequest},
	{propertydomain.ErrInvalidName, http.StatusBadRequest},
	{propertydomain.ErrInvalidProviderID, http.StatusBadRequest},
	{propertydomain.ErrInvalidLocation, http.StatusBadRequest},
	{propertydomain.ErrInvalidCurrency, http.StatusBadRequest},
	{propertydomain.ErrInvalidGuestLimit, http.StatusBadRequest},
	{propertydomain.ErrInvalidCityTaxRule, http.StatusBadRequest},
}

// toAPIError maps domain sentinels to HTTP errors. Unknown errors become a
// generic 500 so internals never leak.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var rangeErr *pricingdomain.RangeError
	if errors.As(err, &rangeErr) {
		out := &APIError{
			Status:  statusFor(rangeErr.Code),
			Code:    rangeErr.Code.Error(),
			Message: rangeErr.Error(),
		}
		if !rangeErr.Night.IsZero() {
			out.Night = rangeErr.Night.String()
		}
		return out
	}

	for _, rule := range statusRules {
		if errors.Is(err, rule.err) {
			msg := rule.err.Error()
			if rule.err == ratesdomain.ErrUpstreamUnavailable {
				msg = "pricing is temporarily unavailable, please retry"
			}
			return &APIError{Status: rule.status, Code: rule.err.Error(), Message: msg}
		}
	}
	return ErrInternal
}

func statusFor(code error) int {
	for _, rule := range statusRules {
		if errors.Is(code, rule.err) {
			return rule.status
		}
	}
	return http.StatusUnprocessableEntity
}

// AbortWithError writes the mapped error and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}
