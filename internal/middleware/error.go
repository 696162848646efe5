package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/woundtrack/supply-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	BlockCount int    `json:"blockCount,omitempty"`
	TraceID    string `json:"traceId,omitempty"`
}

// ErrorHandler translates errors attached to the gin context into the
// stable {kind, message} payload. Store fault detail text is only exposed
// outside production.
func ErrorHandler(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)

		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("trace_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		lastErr := c.Errors.Last()
		status := http.StatusInternalServerError
		if err, ok := lastErr.Err.(interface{ StatusCode() int }); ok {
			status = err.StatusCode()
		}

		resp := ErrorResponse{
			Kind:    string(apperrors.KindOf(lastErr.Err)),
			Message: lastErr.Err.Error(),
			TraceID: traceID,
		}
		if app, ok := lastErr.Err.(*apperrors.AppError); ok {
			resp.BlockCount = app.BlockCount
			if !exposeDetails && (app.Kind == apperrors.KindStoreFault || app.Kind == apperrors.KindInternal) {
				resp.Message = app.Message
			}
		}

		c.JSON(status, resp)
	}
}
