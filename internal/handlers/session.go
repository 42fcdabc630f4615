package handlers

import (
	"net/http"

	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateSessionRequest is the PATCH /api/v1/session payload. Omitted fields
// stay unchanged.
type UpdateSessionRequest struct {
	// automatic | manual
	Mode *string `json:"mode,omitempty" example:"manual"`
	// Soil humidity threshold in percent, 10..100
	HumidityThreshold *float64 `json:"humidity_threshold,omitempty" example:"45"`
}

// @Summary      Create session
// @Description  Starts an isolated operator session in automatic mode with the pump off.
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  models.Session
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sessions [post]
func (h *Handler) createSession(c *gin.Context) {
	sess, err := h.services.Sessions.Create(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to create session", "session_create_failed", err)
		return
	}
	c.Header(sessionHeader, sess.ID)
	c.JSON(http.StatusCreated, sess)
}

// @Summary      Get session
// @Tags         sessions
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Success      200  {object}  models.Session
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/session [get]
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c))
}

// @Summary      Update session
// @Description  Switches mode and/or changes the humidity threshold. The mode cannot change during a run.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string                true  "Session id"
// @Param        body          body    UpdateSessionRequest  true  "Fields to change"
// @Success      200  {object}  models.Session
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session [patch]
func (h *Handler) updateSession(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Mode == nil && req.HumidityThreshold == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "nothing to update"})
		return
	}

	id := currentSession(c).ID
	sess, err := h.services.Sessions.Update(c.Request.Context(), id, service.SessionUpdate{
		Mode:              req.Mode,
		HumidityThreshold: req.HumidityThreshold,
	})
	if err != nil {
		h.respondServiceError(c, err, "failed to update session", "session_update_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// @Summary      End session
// @Description  Deletes the session and its pump event log.
// @Tags         sessions
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session [delete]
func (h *Handler) endSession(c *gin.Context) {
	id := currentSession(c).ID
	if err := h.services.Sessions.End(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err, "failed to end session", "session_end_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusEnded})
}
