package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
)

func idParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil || id <= 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", name+" must be a numeric id"))
		return 0, false
	}
	return id, true
}

func parseID(field, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, newValidationError(field, "invalid_id", field+" must be a numeric id")
	}
	return id, nil
}

// parseStay reads check-in/check-out without judging their order; the
// pricing layer reports ordering problems with a readable reason.
func parseStay(checkIn, checkOut string) (calendar.Range, error) {
	in, err := calendar.Parse(checkIn)
	if err != nil {
		return calendar.Range{}, newValidationError("check_in", "invalid_date", "check_in must be YYYY-MM-DD")
	}
	out, err := calendar.Parse(checkOut)
	if err != nil {
		return calendar.Range{}, newValidationError("check_out", "invalid_date", "check_out must be YYYY-MM-DD")
	}
	return calendar.Range{CheckIn: in, CheckOut: out}, nil
}
