package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/middleware"
	"dompet/internal/stats"
	"dompet/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseDate accepts a calendar day (YYYY-MM-DD) or an RFC3339 timestamp and
// returns its calendar day.
func parseDate(value string) (time.Time, error) {
	if t, err := stats.ParseDay(value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, use YYYY-MM-DD or RFC3339")
	}
	return stats.Day(t), nil
}

// RangeQuery selects a reporting range: a period preset, or an explicit
// from/to pair that takes precedence over it.
type RangeQuery struct {
	Period string `form:"period" binding:"omitempty,stats_period"`
	From   string `form:"from" binding:"omitempty,iso_date"`
	To     string `form:"to" binding:"omitempty,iso_date"`
}

// bindRange binds RangeQuery from the query string and resolves it against now.
func bindRange(c *gin.Context, now time.Time) (stats.DateRange, error) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return stats.DateRange{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	rng, err := stats.ResolveRange(q.Period, q.From, q.To, now)
	switch {
	case errors.Is(err, stats.ErrInvertedRange):
		return stats.DateRange{}, apperrors.ErrInvalidDateRange
	case err != nil:
		return stats.DateRange{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return rng, nil
}

// respondWithError records err on the context and stops the chain;
// middleware.ErrorHandler renders it.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
