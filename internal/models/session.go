package models

import "time"

// Session modes. Exactly one of them drives the pump of a session.
const (
	ModeAutomatic = "automatic"
	ModeManual    = "manual"
)

// Override labels.
const (
	LabelOn  = "ON"
	LabelOff = "OFF"
)

// OverrideState is the manual pump flag plus its last rendered label.
type OverrideState struct {
	PumpOn bool   `json:"pump_on"`
	Label  string `json:"label"`
}

// Session is one operator's isolated context.
type Session struct {
	ID                string        `json:"id"`
	Mode              string        `json:"mode"`
	HumidityThreshold float64       `json:"humidity_threshold"`
	Override          OverrideState `json:"override"`
	Running           bool          `json:"running"` // derived, not stored
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
