package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"punogaria/internal/logger"
	"punogaria/internal/models"

	"github.com/robfig/cron/v3"
)

// LogSink writes frames to the process log. The scheduler uses it because no
// browser is attached to cron-driven runs.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Render(_ context.Context, f models.Frame) error {
	logger.OrNop(s.Log).Infow("scheduled_frame",
		"iteration", f.Iteration,
		"total", f.Total,
		"temperature_c", f.Reading.TemperatureC,
		"humidity_pct", f.Reading.HumidityPct,
		"source", f.Reading.Source,
		"sky", f.Sky,
		"pump", f.Decision.State,
		"reason", f.Decision.Reason,
		"progress", f.Progress,
	)
	return nil
}

func (s LogSink) Reset(_ context.Context, r models.ProgressReset) error {
	logger.OrNop(s.Log).Debugw("scheduled_reset", "progress", r.Progress, "elapsed", r.Elapsed)
	return nil
}

// Scheduler triggers automatic runs on a cron schedule inside a dedicated
// session.
type Scheduler struct {
	spec     string
	sessions Sessions
	sim      Simulation
	params   RunParams
	log      *logger.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	sessionID string
	cancel    context.CancelFunc
}

func NewScheduler(spec string, sessions Sessions, sim Simulation, params RunParams, log *logger.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{
		spec:     spec,
		sessions: sessions,
		sim:      sim,
		params:   params,
		log:      logger.OrNop(log),
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// SessionID is the id of the scheduler's own session, empty before Start.
func (s *Scheduler) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Start creates the scheduler session and begins firing.
func (s *Scheduler) Start(ctx context.Context) error {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return fmt.Errorf("create scheduler session: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Lock()
	s.sessionID = sess.ID
	s.cancel = cancel
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.spec, func() { s.Trigger(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Infow("scheduler_started", "schedule", s.spec, "session_id", sess.ID)
	return nil
}

// Trigger performs one run. Overlapping triggers are skipped.
func (s *Scheduler) Trigger(ctx context.Context) {
	id := s.SessionID()
	res, err := s.sim.Run(ctx, id, s.params, LogSink{Log: s.log})
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.log.Infow("scheduled_run_skipped", "session_id", id, "reason", "previous run still active")
	case errors.Is(err, context.Canceled):
		s.log.Infow("scheduled_run_cancelled", "session_id", id, "iterations", res.Iterations)
	case err != nil:
		s.log.Errorw("scheduled_run_failed", "session_id", id, "error", err)
	default:
		s.log.Infow("scheduled_run_done", "session_id", id, "iterations", res.Iterations)
	}
}

// Stop halts the schedule, cancels an active run and ends the session.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	id := s.sessionID
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warnw("scheduler_stop_timeout", "session_id", id)
		return
	}

	if id != "" {
		if err := s.sessions.End(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			s.log.Warnw("scheduler_session_end_failed", "session_id", id, "error", err)
		}
	}
	s.log.Infow("scheduler_stopped", "session_id", id)
}
