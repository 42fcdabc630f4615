package models

import "time"

// Reading sources.
const (
	SourceSensor   = "sensor"
	SourceFallback = "fallback"
)

// SensorReading is one temperature/humidity sample.
type SensorReading struct {
	TemperatureC float64   `json:"temperature_c"` // °C
	HumidityPct  float64   `json:"humidity_pct"`  // %
	Source       string    `json:"source"`        // sensor | fallback
	TakenAt      time.Time `json:"taken_at"`
}

// TimeSeries is the append-only buffer of readings for a single run.
type TimeSeries []SensorReading

// Append adds r to the end of the series.
func (ts *TimeSeries) Append(r SensorReading) {
	*ts = append(*ts, r)
}

// Snapshot returns a copy safe to hand to a display sink.
func (ts TimeSeries) Snapshot() TimeSeries {
	out := make(TimeSeries, len(ts))
	copy(out, ts)
	return out
}
