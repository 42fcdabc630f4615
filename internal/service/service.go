package service

import (
	"context"
	"sync"
	"time"

	"punogaria/internal/irrigation"
	"punogaria/internal/logger"
	"punogaria/internal/metrics"
	"punogaria/internal/models"
	"punogaria/internal/publisher"
	"punogaria/internal/repository"
)

// Sessions manages the per-operator session record.
type Sessions interface {
	Create(ctx context.Context) (models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	Update(ctx context.Context, id string, u SessionUpdate) (models.Session, error)
	End(ctx context.Context, id string) error
}

// Simulation runs the automatic watering loop for a session.
type Simulation interface {
	Run(ctx context.Context, sessionID string, p RunParams, sink DisplaySink) (RunResult, error)
}

// Manual exposes the two-state pump override.
type Manual interface {
	TurnOn(ctx context.Context, sessionID string) (ManualResult, error)
	TurnOff(ctx context.Context, sessionID string) (ManualResult, error)
	Status(ctx context.Context, sessionID string) (ManualStatus, error)
}

// EventLog exposes the per-session pump audit trail with filtering.
type EventLog interface {
	List(ctx context.Context, sessionID string, f LogFilter) ([]models.PumpEvent, error)
}

// SensorSource yields one temperature/humidity reading or an error meaning
// "absent".
type SensorSource interface {
	Fetch(ctx context.Context) (models.SensorReading, error)
}

// SkyClassifier never fails; problems come back as SkyUnknown.
type SkyClassifier interface {
	Classify(ctx context.Context) models.SkyResult
}

// DisplaySink receives the per-iteration display values.
type DisplaySink interface {
	Render(ctx context.Context, f models.Frame) error
	Reset(ctx context.Context, r models.ProgressReset) error
}

// Options are the collaborators and knobs shared by the sub-services.
type Options struct {
	Sensor    SensorSource
	Sky       SkyClassifier
	Publisher publisher.Publisher
	Metrics   *metrics.Metrics
	Random    irrigation.RandomSource
	Fallback  irrigation.FallbackBounds
	Defaults  Defaults
	Log       *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Publisher == nil {
		o.Publisher = publisher.Nop{}
	}
	if o.Random == nil {
		o.Random = irrigation.DefaultRandomSource()
	}
	if o.Fallback == (irrigation.FallbackBounds{}) {
		o.Fallback = irrigation.DefaultFallbackBounds()
	}
	def := DefaultDefaults()
	if o.Defaults.Iterations <= 0 {
		o.Defaults.Iterations = def.Iterations
	}
	if o.Defaults.Interval <= 0 {
		o.Defaults.Interval = def.Interval
	}
	if o.Defaults.Threshold == 0 {
		o.Defaults.Threshold = def.Threshold
	}
	o.Log = logger.OrNop(o.Log)
	return o
}

// Service aggregates all sub-services.
type Service struct {
	Sessions
	Simulation
	Manual
	EventLog
}

// NewService wires the repository layer and the gateways into the concrete
// services. All of them share one session state guard so that mode switches,
// manual commands and run starts never interleave.
func NewService(repos *repository.Repository, opts Options) *Service {
	opts = opts.withDefaults()
	st := newSessionState(repos.Sessions, repos.Events, opts.Log)

	return &Service{
		Sessions:   NewSessionService(st, opts.Defaults.Threshold),
		Simulation: NewSimulationService(st, opts),
		Manual:     NewManualService(st, opts),
		EventLog:   NewEventLogService(repos.Events),
	}
}

// sessionState is the shared bookkeeping behind every sub-service: the
// repositories, the busy set of running sessions and the lock that makes
// check-then-save sequences atomic.
type sessionState struct {
	mu      sync.Mutex
	running map[string]struct{}

	sessions repository.SessionRepo
	events   repository.EventRepo
	log      *logger.Logger
	now      func() time.Time
}

func newSessionState(sessions repository.SessionRepo, events repository.EventRepo, log *logger.Logger) *sessionState {
	return &sessionState{
		running:  make(map[string]struct{}),
		sessions: sessions,
		events:   events,
		log:      logger.OrNop(log),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// load fetches a session; callers hold mu when they intend to write it back.
func (s *sessionState) load(ctx context.Context, id string) (models.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if sess == nil {
		return models.Session{}, ErrSessionNotFound
	}
	_, sess.Running = s.running[id]
	return *sess, nil
}

func (s *sessionState) isRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[id]
	return ok
}

// release removes id from the busy set.
func (s *sessionState) release(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

func (s *sessionState) appendEvent(ctx context.Context, sessionID, typ, desc string, meta map[string]any) error {
	return s.events.Append(ctx, models.PumpEvent{
		SessionID:   sessionID,
		OccurredAt:  s.now(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
}

func overrideFor(on bool) models.OverrideState {
	if on {
		return models.OverrideState{PumpOn: true, Label: models.LabelOn}
	}
	return models.OverrideState{PumpOn: false, Label: models.LabelOff}
}
