package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error class to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error for err. Client errors are logged at warn
// level and echoed back; anything else is logged at error level and replaced by msg.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		body := dto.ErrorResponse{Error: msg}
		if errors.Is(err, apperrors.ErrConsistency) {
			body.Error = apperrors.ErrConsistency.Error()
		}
		c.JSON(status, body)
		return
	}

	logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	body := dto.ErrorResponse{Error: err.Error()}
	if fe, ok := apperrors.AsFieldError(err); ok {
		body.Field = fe.Field
		body.Rule = fe.Rule
	}
	c.JSON(status, body)
}

// bindJSON binds the request body, answering 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind JSON", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

// bindQuery binds query parameters, answering 400 on failure.
func bindQuery(c *gin.Context, params any) bool {
	if err := c.ShouldBindQuery(params); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind query params", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return false
	}
	return true
}

// queryDate parses an optional YYYY-MM-DD query parameter, answering 400 on failure.
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	t, err := dto.ParseOptionalDate(name, c.Query(name))
	if err != nil {
		respondError(c, err, "Invalid date parameter")
		return time.Time{}, false
	}
	return t, true
}
