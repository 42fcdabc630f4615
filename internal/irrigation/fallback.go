package irrigation

import (
	"math/rand"
	"time"

	"punogaria/internal/models"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Bounds is a closed value range.
type Bounds struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// FallbackBounds are the ranges used when the sensor gateway is unreachable.
type FallbackBounds struct {
	Temperature Bounds `mapstructure:"temperature"`
	Humidity    Bounds `mapstructure:"humidity"`
}

// DefaultFallbackBounds returns temperature [20,40] °C and humidity [10,100] %.
func DefaultFallbackBounds() FallbackBounds {
	return FallbackBounds{
		Temperature: Bounds{Min: 20, Max: 40},
		Humidity:    Bounds{Min: 10, Max: 100},
	}
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultRandomSource returns the process-wide, randomly seeded source.
func DefaultRandomSource() RandomSource { return globalSource{} }

// SynthesizeReading draws a fallback reading uniformly within fb.
func SynthesizeReading(src RandomSource, fb FallbackBounds, now time.Time) models.SensorReading {
	return models.SensorReading{
		TemperatureC: uniform(src, fb.Temperature),
		HumidityPct:  uniform(src, fb.Humidity),
		Source:       models.SourceFallback,
		TakenAt:      now.UTC(),
	}
}

func uniform(src RandomSource, b Bounds) float64 {
	return b.Min + (b.Max-b.Min)*src.Float64()
}
