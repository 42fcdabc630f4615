package service

import (
	"context"
	"fmt"

	"punogaria/internal/logger"
	"punogaria/internal/metrics"
	"punogaria/internal/models"
	"punogaria/internal/publisher"
)

// ManualService flips the pump override of sessions in manual mode.
type ManualService struct {
	st        *sessionState
	sensor    SensorSource
	publisher publisher.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewManualService(st *sessionState, opts Options) *ManualService {
	opts = opts.withDefaults()
	return &ManualService{
		st:        st,
		sensor:    opts.Sensor,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		log:       opts.Log,
	}
}

func (s *ManualService) TurnOn(ctx context.Context, sessionID string) (ManualResult, error) {
	return s.set(ctx, sessionID, true)
}

func (s *ManualService) TurnOff(ctx context.Context, sessionID string) (ManualResult, error) {
	return s.set(ctx, sessionID, false)
}

// set is a no-op when the override already matches on.
func (s *ManualService) set(ctx context.Context, sessionID string, on bool) (ManualResult, error) {
	want := overrideFor(on)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	sess, err := s.st.load(ctx, sessionID)
	if err != nil {
		return ManualResult{}, err
	}
	if sess.Mode != models.ModeManual {
		return ManualResult{}, fmt.Errorf("manual pump control needs manual mode, session is %s: %w", sess.Mode, ErrModeConflict)
	}
	if sess.Override.PumpOn == on {
		s.metrics.ManualCommand(want.Label, false)
		return ManualResult{Override: sess.Override, Changed: false}, nil
	}

	sess.Override = want
	sess.UpdatedAt = s.st.now()
	if err := s.st.sessions.Save(ctx, sess); err != nil {
		return ManualResult{}, err
	}

	typ, desc := models.EventManualOff, "Pump turned off manually"
	if on {
		typ, desc = models.EventManualOn, "Pump turned on manually"
	}
	if err := s.st.appendEvent(ctx, sessionID, typ, desc, nil); err != nil {
		return ManualResult{}, err
	}
	s.metrics.ManualCommand(want.Label, true)

	state := models.PumpOff
	if on {
		state = models.PumpOn
	}
	err = s.publisher.Publish(ctx, models.PumpCommand{
		SessionID: sessionID,
		State:     state,
		Reason:    "manual override",
		Source:    models.CommandSourceManual,
		IssuedAt:  sess.UpdatedAt,
	})
	if err != nil {
		s.log.Warnw("pump_command_not_delivered", "session_id", sessionID, "state", state, "error", err)
	}

	s.log.Infow("manual_pump_set", "session_id", sessionID, "pump_on", on)
	return ManualResult{Override: want, Changed: true}, nil
}

// Status returns the override flag and a best-effort reading. An absent
// sensor yields zero values and a warning.
func (s *ManualService) Status(ctx context.Context, sessionID string) (ManualStatus, error) {
	s.st.mu.Lock()
	sess, err := s.st.load(ctx, sessionID)
	s.st.mu.Unlock()
	if err != nil {
		return ManualStatus{}, err
	}

	out := ManualStatus{
		Mode:     sess.Mode,
		Override: sess.Override,
		Color:    models.ColorOff,
	}
	if sess.Override.PumpOn {
		out.Color = models.ColorOn
	}

	reading, err := s.sensor.Fetch(ctx)
	if err != nil {
		out.Reading = models.SensorReading{Source: models.SourceSensor, TakenAt: s.st.now()}
		out.Warnings = append(out.Warnings, "Sensor data unavailable: "+err.Error())
		return out, nil
	}
	out.Reading = reading
	return out, nil
}
