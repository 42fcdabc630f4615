package handlers

import (
	"errors"
	"net/http"

	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants.
const (
	statusOK    = "ok"
	statusEnded = "ended"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidThreshold),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidRunParams),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidEventType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrModeConflict),
		errors.Is(err, service.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError answers with the mapped status. Client errors carry the
// service message; server errors carry fallbackMsg.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallbackMsg, logKey string, kv ...interface{}) {
	code := statusFor(err)
	msg := fallbackMsg
	if code < http.StatusInternalServerError {
		msg = err.Error()
	}
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
