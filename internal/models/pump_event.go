package models

import "time"

// Pump event types.
const (
	EventRunStart       = "RUN_START"
	EventRunEnd         = "RUN_END"
	EventDecision       = "DECISION"
	EventSensorFallback = "SENSOR_FALLBACK"
	EventSkyUnknown     = "SKY_UNKNOWN"
	EventManualOn       = "MANUAL_ON"
	EventManualOff      = "MANUAL_OFF"
	EventModeChange     = "MODE_CHANGE"
)

// IsEventType reports whether t is one of the types above.
func IsEventType(t string) bool {
	switch t {
	case EventRunStart, EventRunEnd, EventDecision, EventSensorFallback,
		EventSkyUnknown, EventManualOn, EventManualOff, EventModeChange:
		return true
	}
	return false
}

// PumpEvent is a single entry of a session's audit trail.
type PumpEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Command sources.
const (
	CommandSourceAuto   = "auto"
	CommandSourceManual = "manual"
)

// PumpCommand is what gets published to the actuator bus.
type PumpCommand struct {
	SessionID string    `json:"session_id"`
	State     PumpState `json:"state"`
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	IssuedAt  time.Time `json:"issued_at"`
}
