package handlers

import (
	"context"
	"net/http"

	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Manual pump status
// @Description  Override state plus a best-effort sensor reading (zeros and a warning when the sensor is unreachable).
// @Tags         pump
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Success      200  {object}  service.ManualStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/pump [get]
func (h *Handler) pumpStatus(c *gin.Context) {
	id := currentSession(c).ID
	st, err := h.services.Manual.Status(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, "failed to load pump status", "pump_status_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Turn pump on
// @Description  Manual mode only. A no-op when the pump is already on.
// @Tags         pump
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Success      200  {object}  service.ManualResult
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/pump/on [post]
func (h *Handler) pumpOn(c *gin.Context) {
	h.setPump(c, h.services.Manual.TurnOn, "pump_on_failed")
}

// @Summary      Turn pump off
// @Description  Manual mode only. A no-op when the pump is already off.
// @Tags         pump
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Success      200  {object}  service.ManualResult
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/pump/off [post]
func (h *Handler) pumpOff(c *gin.Context) {
	h.setPump(c, h.services.Manual.TurnOff, "pump_off_failed")
}

func (h *Handler) setPump(c *gin.Context, op func(ctx context.Context, id string) (service.ManualResult, error), logKey string) {
	id := currentSession(c).ID
	res, err := op(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, "failed to switch pump", logKey, "session_id", id)
		return
	}
	c.JSON(http.StatusOK, res)
}
