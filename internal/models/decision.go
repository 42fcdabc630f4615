package models

// PumpState is the On/Off instruction for the pump.
type PumpState string

const (
	PumpOn  PumpState = "ON"
	PumpOff PumpState = "OFF"
)

// Decision reasons and causes.
const (
	CauseLowHumidity     = "low humidity"
	CauseHighTemperature = "high temperature"
	ReasonBadWeather     = "bad weather"
	ReasonNormal         = "normal conditions"
)

// Status colour tags used by the display.
const (
	ColorOn  = "green"
	ColorOff = "red"
)

// PumpDecision is the output of one policy evaluation.
type PumpDecision struct {
	State      PumpState `json:"state"`
	Reason     string    `json:"reason"`
	Causes     []string  `json:"causes,omitempty"`
	BadWeather bool      `json:"bad_weather"`
}

// Color returns the status colour tag for the decision.
func (d PumpDecision) Color() string {
	return StateColor(d.State)
}

// StateColor maps a pump state to its colour tag.
func StateColor(s PumpState) string {
	if s == PumpOn {
		return ColorOn
	}
	return ColorOff
}
