// Package irrigation holds the pure watering rules: the pump policy, the sky
// heuristics and the degraded-mode reading synthesis.
package irrigation

import (
	"errors"
	"fmt"
	"strings"

	"punogaria/internal/models"
)

// Policy constants.
const (
	HighTemperatureC         = 35.0
	DefaultHumidityThreshold = 40.0
	MinHumidityThreshold     = 10.0
	MaxHumidityThreshold     = 100.0
)

// ErrInvalidThreshold is returned for thresholds outside [10, 100].
var ErrInvalidThreshold = errors.New("invalid humidity threshold")

// ValidateThreshold checks the operator-configured humidity threshold.
func ValidateThreshold(threshold float64) error {
	if threshold < MinHumidityThreshold || threshold > MaxHumidityThreshold {
		return fmt.Errorf("%w: %.1f not in [%.0f, %.0f]",
			ErrInvalidThreshold, threshold, MinHumidityThreshold, MaxHumidityThreshold)
	}
	return nil
}

// IsBadWeather reports whether the sky blocks watering. An unknown sky counts
// as bad weather.
func IsBadWeather(sky models.SkyCondition) bool {
	return sky == models.SkyOvercast || sky == models.SkyUnknown
}

// Decide combines soil humidity, temperature and the sky into a pump decision.
// Both triggers are strict: humidity equal to the threshold or a temperature of
// exactly 35°C do not ask for water.
func Decide(humidity, temperature float64, sky models.SkyCondition, threshold float64) models.PumpDecision {
	var causes []string
	if humidity < threshold {
		causes = append(causes, models.CauseLowHumidity)
	}
	if temperature > HighTemperatureC {
		causes = append(causes, models.CauseHighTemperature)
	}

	badWeather := IsBadWeather(sky)
	switch {
	case len(causes) > 0 && !badWeather:
		return models.PumpDecision{
			State:  models.PumpOn,
			Reason: strings.Join(causes, ", "),
			Causes: causes,
		}
	case badWeather:
		return models.PumpDecision{
			State:      models.PumpOff,
			Reason:     models.ReasonBadWeather,
			Causes:     causes,
			BadWeather: true,
		}
	default:
		return models.PumpDecision{State: models.PumpOff, Reason: models.ReasonNormal}
	}
}
