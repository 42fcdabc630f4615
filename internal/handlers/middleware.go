package handlers

import (
	"errors"
	"net/http"
	"strings"

	"punogaria/internal/models"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionHeader = "X-Session-ID"
	ctxSessionKey = "session"
)

// sessionMiddleware resolves the X-Session-ID header into a session.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(sessionHeader))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing " + sessionHeader + " header",
		})
		return
	}

	sess, err := h.services.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load session", "session_lookup_failed", err, "session_id", id)
		c.Abort()
		return
	}

	c.Set(ctxSessionKey, sess)
	c.Next()
}

// currentSession returns the session stored by sessionMiddleware.
func currentSession(c *gin.Context) models.Session {
	v, _ := c.Get(ctxSessionKey)
	sess, _ := v.(models.Session)
	return sess
}
