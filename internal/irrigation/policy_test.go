package irrigation

import (
	"errors"
	"strings"
	"testing"

	"punogaria/internal/models"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		humidity   float64
		temp       float64
		sky        models.SkyCondition
		threshold  float64
		wantState  models.PumpState
		wantReason string
	}{
		{"low humidity clear sky", 25, 30, models.SkyClear, 40, models.PumpOn, "low humidity"},
		{"high temperature clear sky", 60, 36.5, models.SkyClear, 40, models.PumpOn, "high temperature"},
		{"both causes cloudy", 15, 39, models.SkyCloudy, 40, models.PumpOn, "low humidity, high temperature"},
		{"overcast blocks low humidity", 10, 25, models.SkyOvercast, 40, models.PumpOff, "bad weather"},
		{"overcast without causes", 80, 25, models.SkyOvercast, 40, models.PumpOff, "bad weather"},
		{"unknown sky is bad weather", 10, 39, models.SkyUnknown, 40, models.PumpOff, "bad weather"},
		{"normal conditions", 55, 28, models.SkyClear, 40, models.PumpOff, "normal conditions"},
		{"humidity equal to threshold", 40, 20, models.SkyClear, 40, models.PumpOff, "normal conditions"},
		{"temperature exactly 35", 90, 35.0, models.SkyClear, 40, models.PumpOff, "normal conditions"},
		{"custom threshold", 65, 22, models.SkyClear, 70, models.PumpOn, "low humidity"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tc.humidity, tc.temp, tc.sky, tc.threshold)
			if got.State != tc.wantState {
				t.Fatalf("state: got %s, want %s", got.State, tc.wantState)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("reason: got %q, want %q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestDecide_SweepProperties(t *testing.T) {
	t.Parallel()

	const threshold = 40.0
	for h := 0.0; h <= 100; h += 2.5 {
		for temp := 15.0; temp <= 45; temp += 0.5 {
			over := Decide(h, temp, models.SkyOvercast, threshold)
			if over.State != models.PumpOff || over.Reason != models.ReasonBadWeather {
				t.Fatalf("overcast h=%.1f t=%.1f: got %+v", h, temp, over)
			}

			clear := Decide(h, temp, models.SkyClear, threshold)
			if h < threshold && temp <= HighTemperatureC {
				if clear.State != models.PumpOn || !strings.Contains(clear.Reason, models.CauseLowHumidity) {
					t.Fatalf("low humidity h=%.1f t=%.1f: got %+v", h, temp, clear)
				}
			}
			if h >= threshold && temp > HighTemperatureC {
				if clear.State != models.PumpOn || !strings.Contains(clear.Reason, models.CauseHighTemperature) {
					t.Fatalf("high temperature h=%.1f t=%.1f: got %+v", h, temp, clear)
				}
				if strings.Contains(clear.Reason, models.CauseLowHumidity) {
					t.Fatalf("unexpected low humidity cause h=%.1f: %+v", h, clear)
				}
			}
		}
	}
}

func TestDecide_BadWeatherKeepsCauses(t *testing.T) {
	t.Parallel()

	got := Decide(12, 38, models.SkyOvercast, 40)
	if !got.BadWeather {
		t.Fatalf("expected BadWeather=true")
	}
	if len(got.Causes) != 2 {
		t.Fatalf("expected both causes recorded, got %v", got.Causes)
	}
}

func TestValidateThreshold(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{10, 40, 100} {
		if err := ValidateThreshold(v); err != nil {
			t.Fatalf("ValidateThreshold(%v) unexpected error: %v", v, err)
		}
	}
	for _, v := range []float64{0, 9.99, 100.5, -1} {
		if err := ValidateThreshold(v); !errors.Is(err, ErrInvalidThreshold) {
			t.Fatalf("ValidateThreshold(%v) = %v, want ErrInvalidThreshold", v, err)
		}
	}
}
