package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"punogaria/internal/irrigation"
	"punogaria/internal/logger"
	"punogaria/internal/metrics"
	"punogaria/internal/models"
	"punogaria/internal/publisher"
)

// Run outcomes reported to metrics.
const (
	outcomeCompleted = "completed"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
)

const imageUnavailable = "Camera image could not be loaded."

// SimulationService drives the automatic watering loop.
type SimulationService struct {
	st        *sessionState
	sensor    SensorSource
	sky       SkyClassifier
	publisher publisher.Publisher
	metrics   *metrics.Metrics
	random    irrigation.RandomSource
	fallback  irrigation.FallbackBounds
	defaults  Defaults
	log       *logger.Logger

	// sleep waits d or until ctx ends; tests swap it out.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSimulationService(st *sessionState, opts Options) *SimulationService {
	opts = opts.withDefaults()
	return &SimulationService{
		st:        st,
		sensor:    opts.Sensor,
		sky:       opts.Sky,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		random:    opts.Random,
		fallback:  opts.Fallback,
		defaults:  opts.Defaults,
		log:       opts.Log,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ElapsedLabel renders the simulated time shown under the progress bar.
func ElapsedLabel(d time.Duration) string {
	return "Simulation time: " + strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + " seconds"
}

// StatusLabel renders the pump status line.
func StatusLabel(state models.PumpState) string {
	return "Pump status: " + string(state)
}

func (s *SimulationService) resolve(p RunParams, sess models.Session) (RunParams, error) {
	if p.Iterations == 0 {
		p.Iterations = s.defaults.Iterations
	}
	if p.Interval == 0 {
		p.Interval = s.defaults.Interval
	}
	if p.Iterations < 0 || p.Interval < 0 {
		return p, ErrInvalidRunParams
	}
	if p.Threshold == 0 {
		p.Threshold = sess.HumidityThreshold
	}
	if err := irrigation.ValidateThreshold(p.Threshold); err != nil {
		return p, err
	}
	return p, nil
}

// begin checks the mode and marks the session busy in one critical section.
func (s *SimulationService) begin(ctx context.Context, sessionID string, p RunParams) (RunParams, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	sess, err := s.st.load(ctx, sessionID)
	if err != nil {
		return p, err
	}
	if sess.Mode != models.ModeAutomatic {
		return p, fmt.Errorf("simulation needs automatic mode, session is %s: %w", sess.Mode, ErrModeConflict)
	}
	if sess.Running {
		return p, ErrRunInProgress
	}
	p, err = s.resolve(p, sess)
	if err != nil {
		return p, err
	}
	s.st.running[sessionID] = struct{}{}
	return p, nil
}

// Run executes p.Iterations steps, rendering one frame per step and a
// progress reset at the end. Cancelling ctx ends the run early with ctx.Err();
// a sink error aborts it.
func (s *SimulationService) Run(ctx context.Context, sessionID string, p RunParams, sink DisplaySink) (RunResult, error) {
	p, err := s.begin(ctx, sessionID, p)
	if err != nil {
		return RunResult{SessionID: sessionID}, err
	}
	defer s.st.release(sessionID)

	log := s.log.With("session_id", sessionID)
	s.metrics.RunStarted()
	outcome := outcomeFailed
	defer func() { s.metrics.RunFinished(outcome) }()

	s.record(ctx, log, sessionID, models.EventRunStart, "Automatic simulation started", map[string]any{
		"iterations":   p.Iterations,
		"interval_sec": p.Interval.Seconds(),
		"threshold":    p.Threshold,
	})
	log.Infow("simulation_started", "iterations", p.Iterations, "interval", p.Interval, "threshold", p.Threshold)

	res := RunResult{SessionID: sessionID}
	var (
		series models.TimeSeries
		last   models.PumpState
	)

	runErr := func() error {
		for i := 1; i <= p.Iterations; i++ {
			frame, err := s.step(ctx, log, sessionID, i, p, &series)
			if err != nil {
				return err
			}
			res.Iterations = i
			d := frame.Decision
			res.Last = &d
			res.Warnings = append(res.Warnings, frame.Warnings...)

			if err := sink.Render(ctx, frame); err != nil {
				return fmt.Errorf("render frame %d: %w", i, err)
			}
			if d.State != last {
				s.publish(ctx, log, sessionID, d)
				last = d.State
			}

			if i < p.Iterations {
				if err := s.sleep(ctx, p.Interval); err != nil {
					return err
				}
			}
		}
		return nil
	}()
	res.Series = series.Snapshot()

	// The reset goes out even after an early stop, so a live display never
	// stays stuck at a partial progress value.
	resetErr := sink.Reset(context.WithoutCancel(ctx), models.ProgressReset{Progress: 0, Elapsed: ElapsedLabel(0)})

	switch {
	case runErr == nil && resetErr == nil:
		outcome = outcomeCompleted
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		outcome = outcomeCancelled
	}

	s.record(context.WithoutCancel(ctx), log, sessionID, models.EventRunEnd, "Automatic simulation "+outcome, map[string]any{
		"completed_iterations": res.Iterations,
		"outcome":              outcome,
	})
	log.Infow("simulation_finished", "outcome", outcome, "iterations", res.Iterations)

	if runErr != nil {
		return res, runErr
	}
	if resetErr != nil {
		return res, fmt.Errorf("render progress reset: %w", resetErr)
	}
	return res, nil
}

// step performs one iteration: reading, sky, decision, frame.
func (s *SimulationService) step(ctx context.Context, log *logger.Logger, sessionID string, i int, p RunParams, series *models.TimeSeries) (models.Frame, error) {
	s.metrics.Iteration()
	var warnings []string

	reading, err := s.sensor.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return models.Frame{}, ctx.Err()
		}
		reading = irrigation.SynthesizeReading(s.random, s.fallback, s.st.now())
		warnings = append(warnings, "Sensor data unavailable: "+err.Error())
		s.metrics.SensorFallback()
		s.record(ctx, log, sessionID, models.EventSensorFallback, "Sensor unavailable, using simulated reading", map[string]any{
			"iteration":     i,
			"error":         err.Error(),
			"temperature_c": reading.TemperatureC,
			"humidity_pct":  reading.HumidityPct,
		})
	}

	sky := s.sky.Classify(ctx)
	if ctx.Err() != nil {
		return models.Frame{}, ctx.Err()
	}
	s.metrics.SkyCondition(string(sky.Condition))
	if sky.Condition == models.SkyUnknown {
		warnings = append(warnings, sky.Label())
		s.record(ctx, log, sessionID, models.EventSkyUnknown, sky.Label(), map[string]any{
			"iteration": i,
			"error":     sky.Error,
		})
	}

	decision := irrigation.Decide(reading.HumidityPct, reading.TemperatureC, sky.Condition, p.Threshold)
	s.metrics.Decision(string(decision.State), decision.Reason)
	series.Append(reading)

	frame := models.Frame{
		Iteration:   i,
		Total:       p.Iterations,
		Reading:     reading,
		Sky:         sky.Condition,
		SkyLabel:    sky.Label(),
		Decision:    decision,
		StatusLabel: StatusLabel(decision.State),
		StatusColor: decision.Color(),
		Series:      series.Snapshot(),
		Progress:    min(i*100/p.Iterations, 100),
		Elapsed:     ElapsedLabel(time.Duration(i) * p.Interval),
		Warnings:    warnings,
	}
	if len(sky.Image) > 0 {
		frame.Image = &models.FrameImage{
			ContentType: sky.ContentType,
			DataBase64:  base64.StdEncoding.EncodeToString(sky.Image),
		}
	} else {
		frame.ImageWarning = imageUnavailable
	}

	s.record(ctx, log, sessionID, models.EventDecision, "Pump "+string(decision.State)+": "+decision.Reason, map[string]any{
		"iteration":     i,
		"temperature_c": reading.TemperatureC,
		"humidity_pct":  reading.HumidityPct,
		"source":        reading.Source,
		"sky":           sky.Condition,
		"threshold":     p.Threshold,
	})
	log.Debugw("simulation_step", "iteration", i, "state", decision.State, "reason", decision.Reason, "sky", sky.Condition)
	return frame, nil
}

// record appends an audit event; failures are logged, never fatal to the run.
func (s *SimulationService) record(ctx context.Context, log *logger.Logger, sessionID, typ, desc string, meta map[string]any) {
	if err := s.st.appendEvent(ctx, sessionID, typ, desc, meta); err != nil {
		log.Warnw("event_append_failed", "type", typ, "error", err)
	}
}

func (s *SimulationService) publish(ctx context.Context, log *logger.Logger, sessionID string, d models.PumpDecision) {
	err := s.publisher.Publish(ctx, models.PumpCommand{
		SessionID: sessionID,
		State:     d.State,
		Reason:    d.Reason,
		Source:    models.CommandSourceAuto,
		IssuedAt:  s.st.now(),
	})
	if err != nil {
		log.Warnw("pump_command_not_delivered", "state", d.State, "error", err)
	}
}
