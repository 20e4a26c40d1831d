package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finshield/finshield-backend/internal/domain"
)

// respondError maps domain errors onto HTTP statuses. Validation rejections
// carry their amounts so the client can self-correct without a second call.
func (s *Server) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body := gin.H{"error": validationErr.Reason}
		if validationErr.Shortfall.IsPositive() {
			body["requested"] = validationErr.Requested.IntPart()
			body["available"] = validationErr.Available.IntPart()
			body["shortfall"] = validationErr.Shortfall.IntPart()
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var invariantErr *domain.InvariantViolationError
	if errors.As(err, &invariantErr) {
		s.logger.Error("invariant violation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": invariantErr.Error()})
		return
	}

	var upstreamErr *domain.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.logger.Error("upstream failure",
			zap.String("step", upstreamErr.Step),
			zap.Error(upstreamErr.Err),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "a dependent store operation failed",
			"step":  upstreamErr.Step,
		})
		return
	}

	s.logger.Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
