package httpserver

import (
	"errors"
	"net/http"

	"ecofinds-api/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// writeError maps domain errors to their status and hides everything else
// behind a logged 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		body := gin.H{"error": de.Message}
		if de.Kind == domain.KindConflict && len(de.Details) > 0 {
			body["inactiveItems"] = de.Details
		}
		c.JSON(statusFor(de.Kind), body)
		return
	}

	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
