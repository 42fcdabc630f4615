package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"punogaria/internal/models"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

func TestParseRunParams(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, nil)

	cases := []struct {
		name    string
		u       string
		want    service.RunParams
		wantErr bool
	}{
		{"defaults_when_missing", "/run", service.RunParams{}, false},
		{"all_set", "/run?iterations=5&interval=200ms&threshold=55", service.RunParams{Iterations: 5, Interval: 200 * time.Millisecond, Threshold: 55}, false},
		{"interval_ms", "/run?interval_ms=150", service.RunParams{Interval: 150 * time.Millisecond}, false},
		{"interval_wins_over_ms", "/run?interval=2s&interval_ms=150", service.RunParams{Interval: 2 * time.Second}, false},
		{"iterations_zero", "/run?iterations=0", service.RunParams{}, true},
		{"iterations_too_many", "/run?iterations=100000", service.RunParams{}, true},
		{"interval_too_long", "/run?interval=2h", service.RunParams{}, true},
		{"interval_bogus", "/run?interval=bogus", service.RunParams{}, true},
		{"interval_ms_nan", "/run?interval_ms=NaN", service.RunParams{}, true},
		{"threshold_nan", "/run?threshold=wet", service.RunParams{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, tc.u, nil)
			got, err := h.parseRunParams(c)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRunSimulation_REST(t *testing.T) {
	last := models.PumpDecision{State: models.PumpOn, Reason: "low humidity"}
	sim := &mockSimulation{
		frames: 3,
		result: service.RunResult{
			SessionID:  testSessionID,
			Iterations: 3,
			Series:     models.TimeSeries{{HumidityPct: 20}, {HumidityPct: 21}, {HumidityPct: 22}},
			Last:       &last,
		},
	}
	r := newTestRouter(&service.Service{
		Sessions:   newMockSessions(testSession(models.ModeAutomatic)),
		Simulation: sim,
	})
	hdr := sessionHeaders(testSessionID)

	w := doRequest(r, http.MethodPost, "/api/v1/simulation/run?iterations=3&interval_ms=10", hdr, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var res service.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Series) != 3 || res.Last == nil || res.Last.State != models.PumpOn {
		t.Fatalf("unexpected result: %+v", res)
	}
	if sim.lastID != testSessionID || sim.lastP.Iterations != 3 || sim.lastP.Interval != 10*time.Millisecond {
		t.Fatalf("params not forwarded: id=%q p=%+v", sim.lastID, sim.lastP)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/simulation/run?iterations=-2", hdr, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad params, got %d", w.Code)
	}

	sim.err = fmt.Errorf("simulation needs automatic mode: %w", service.ErrModeConflict)
	w = doRequest(r, http.MethodPost, "/api/v1/simulation/run", hdr, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	sim.err = service.ErrRunInProgress
	w = doRequest(r, http.MethodPost, "/api/v1/simulation/run", hdr, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for concurrent run, got %d", w.Code)
	}
}
