package service

import (
	"time"

	"punogaria/internal/models"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "RUN_START", "DECISION", "MANUAL_ON", ...
}

// RunParams configures one simulation run. Zero values fall back to the
// configured defaults and, for the threshold, to the session's own setting.
type RunParams struct {
	Iterations int
	Interval   time.Duration
	Threshold  float64
}

// RunResult summarises a finished (or aborted) run.
type RunResult struct {
	SessionID  string               `json:"session_id"`
	Iterations int                  `json:"iterations"` // completed steps
	Series     models.TimeSeries    `json:"series"`
	Last       *models.PumpDecision `json:"last_decision,omitempty"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// SessionUpdate carries the optional fields of a PATCH.
type SessionUpdate struct {
	Mode              *string
	HumidityThreshold *float64
}

// ManualResult is returned by TurnOn/TurnOff.
type ManualResult struct {
	Override models.OverrideState `json:"override"`
	Changed  bool                 `json:"changed"`
}

// ManualStatus is the manual-mode view: override flag plus a best-effort
// sensor reading.
type ManualStatus struct {
	Mode     string               `json:"mode"`
	Override models.OverrideState `json:"override"`
	Color    string               `json:"color"`
	Reading  models.SensorReading `json:"reading"`
	Warnings []string             `json:"warnings,omitempty"`
}

// Defaults are the operator parameters used when a request leaves them out.
type Defaults struct {
	Iterations int
	Interval   time.Duration
	Threshold  float64
}

// DefaultDefaults mirrors the dashboard: 20 one-second steps, threshold 40 %.
func DefaultDefaults() Defaults {
	return Defaults{Iterations: 20, Interval: time.Second, Threshold: 40}
}
