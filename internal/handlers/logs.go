package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List pump events
// @Description  Pump decisions and manual commands of the current session, oldest first. Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         logs
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session id"
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query   string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). Date-only treated as end of day."  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(RUN_START,RUN_END,DECISION,SENSOR_FALLBACK,SKY_UNKNOWN,MANUAL_ON,MANUAL_OFF,MODE_CHANGE)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	sessionID := currentSession(c).ID

	f, msg := parseLogFilter(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), sessionID, f)
	if err != nil {
		h.respondServiceError(c, err, "failed to load logs", "logs_list_failed",
			"session_id", sessionID, "from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"count":      len(events),
		"events":     events,
	})
}

// parseLogFilter reads from/to/type. A date-only 'to' covers that whole day.
func parseLogFilter(c *gin.Context) (service.LogFilter, string) {
	f := service.LogFilter{Type: strings.ToUpper(strings.TrimSpace(c.Query("type")))}

	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, errFromInvalid
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, errToInvalid
		}
		if isDateOnly(qs) {
			t = t.Add(24*time.Hour - time.Nanosecond).UTC()
		}
		f.To = t
	}
	return f, ""
}

// parseQueryTime accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' and 'YYYY-MM-DD'.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
