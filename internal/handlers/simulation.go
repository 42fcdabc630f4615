package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"punogaria/internal/models"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

// RunLimits bound the operator-supplied run parameters.
type RunLimits struct {
	MaxIterations int
	MaxInterval   time.Duration
}

func DefaultRunLimits() RunLimits {
	return RunLimits{MaxIterations: 500, MaxInterval: time.Minute}
}

// parseRunParams reads ?iterations=, ?interval=2s or ?interval_ms=2000 and
// ?threshold=. Missing values stay zero so the service applies its defaults.
func (h *Handler) parseRunParams(c *gin.Context) (service.RunParams, error) {
	var p service.RunParams

	if s := c.Query("iterations"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > h.limits.MaxIterations {
			return p, fmt.Errorf("iterations must be an integer in [1, %d]", h.limits.MaxIterations)
		}
		p.Iterations = n
	}

	if s := c.Query("interval"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 || d > h.limits.MaxInterval {
			return p, fmt.Errorf("interval must be a duration in (0, %s]", h.limits.MaxInterval)
		}
		p.Interval = d
	} else if s := c.Query("interval_ms"); s != "" {
		ms, err := strconv.Atoi(s)
		d := time.Duration(ms) * time.Millisecond
		if err != nil || ms <= 0 || d > h.limits.MaxInterval {
			return p, fmt.Errorf("interval_ms must be in [1, %d]", h.limits.MaxInterval.Milliseconds())
		}
		p.Interval = d
	}

	if s := c.Query("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, errors.New("threshold must be a number")
		}
		p.Threshold = v
	}
	return p, nil
}

// frameCounter is the sink of blocking runs: the caller only wants the result.
type frameCounter struct {
	frames int
	resets int
}

func (f *frameCounter) Render(context.Context, models.Frame) error {
	f.frames++
	return nil
}

func (f *frameCounter) Reset(context.Context, models.ProgressReset) error {
	f.resets++
	return nil
}

// @Summary      Run simulation (blocking)
// @Description  Runs the automatic loop to completion and returns the series and last decision. Use the WebSocket endpoint for live frames.
// @Tags         simulation
// @Produce      json
// @Param        X-Session-ID  header  string  true   "Session id"
// @Param        iterations    query   int     false  "Number of steps (default 20)"
// @Param        interval      query   string  false  "Pause between steps, e.g. 1s"
// @Param        interval_ms   query   int     false  "Pause between steps in milliseconds"
// @Param        threshold     query   number  false  "Humidity threshold override, 10..100"
// @Success      200  {object}  service.RunResult
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/simulation/run [post]
func (h *Handler) runSimulation(c *gin.Context) {
	p, err := h.parseRunParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := currentSession(c).ID
	res, err := h.services.Simulation.Run(c.Request.Context(), id, p, &frameCounter{})
	if err != nil {
		h.respondServiceError(c, err, "simulation failed", "simulation_run_failed", "session_id", id)
		return
	}
	c.JSON(http.StatusOK, res)
}
