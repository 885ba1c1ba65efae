package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// ReceiveWebhook
// POST /api/webhooks/:provider
//
// Any non-2xx answer makes the provider redeliver.
func (s *Server) ReceiveWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": &APIError{Code: "payload_too_large", Message: "payload too large"}})
			return
		}
		AbortWithError(c, invalidRequestError())
		return
	}

	ack, err := s.webhookSvc.IngestWebhook(c.Request.Context(), c.Param("provider"), payload, c.Request.Header)
	if err != nil {
		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			s.log.Error("webhook not acknowledged",
				zap.String("provider", c.Param("provider")),
				zap.String("request_id", RequestIDFromContext(c.Request.Context())),
				zap.Error(err))
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "event_id": ack.EventID, "outcome": ack.Outcome})
}
