package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardiactrader/internal/apperrors"
)

// writeError maps domain errors to HTTP status codes
func writeError(c *gin.Context, err error) {
	var (
		insufficientFunds  *apperrors.InsufficientFundsError
		insufficientShares *apperrors.InsufficientSharesError
		invalidState       *apperrors.InvalidStateError
	)

	switch {
	case apperrors.NotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &insufficientFunds),
		errors.As(err, &insufficientShares),
		errors.Is(err, apperrors.ErrInvalidShares),
		errors.Is(err, apperrors.ErrPriceNotSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrExternalServiceUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// playerID reads the caller identity from the X-Player-ID header. Writes the
// 400 response itself when the header is missing or malformed.
func playerID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader("X-Player-ID")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Player-ID header is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-Player-ID header"})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a uuid path parameter, writing the 400 response on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return uuid.Nil, false
	}
	return id, true
}
