package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"punogaria/internal/logger"
	"punogaria/internal/models"
)

// memSessionRepo is an in-memory SessionRepo. Deleting a session drops its
// events from the paired memEventRepo, like the SQLite foreign key does.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	events   *memEventRepo
	saveErr  error
}

func (r *memSessionRepo) Create(_ context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	s.Running = false
	return &s, nil
}

func (r *memSessionRepo) Save(_ context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok && r.events != nil {
		r.events.dropSession(id)
	}
	return ok, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []models.PumpEvent
}

func (r *memEventRepo) Append(_ context.Context, e models.PumpEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(_ context.Context, sessionID string, from, to time.Time, typ string) ([]models.PumpEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PumpEvent
	for _, e := range r.events {
		if e.SessionID != sessionID {
			continue
		}
		if (!from.IsZero() && e.OccurredAt.Before(from)) || (!to.IsZero() && e.OccurredAt.After(to)) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memEventRepo) dropSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, e := range r.events {
		if e.SessionID != id {
			kept = append(kept, e)
		}
	}
	r.events = kept
}

// ofType returns the types of the recorded events of one session, in order.
func (r *memEventRepo) ofType(sessionID, typ string) []models.PumpEvent {
	out, _ := r.List(context.Background(), sessionID, time.Time{}, time.Time{}, typ)
	return out
}

func newMemRepos() (*memSessionRepo, *memEventRepo) {
	events := &memEventRepo{}
	return &memSessionRepo{sessions: map[string]models.Session{}, events: events}, events
}

// scriptedSensor returns readings in order; a nil entry means "absent".
type scriptedSensor struct {
	mu       sync.Mutex
	readings []*models.SensorReading
	calls    int
}

var errSensorDown = errors.New("network failure from http://esp32/data: connection refused")

func (s *scriptedSensor) Fetch(context.Context) (models.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if len(s.readings) == 0 {
		return models.SensorReading{}, errSensorDown
	}
	r := s.readings[min(i, len(s.readings)-1)]
	if r == nil {
		return models.SensorReading{}, errSensorDown
	}
	return *r, nil
}

func reading(tempC, humidity float64) *models.SensorReading {
	return &models.SensorReading{TemperatureC: tempC, HumidityPct: humidity, Source: models.SourceSensor}
}

type fixedSky struct {
	result models.SkyResult
	calls  int
}

func (f *fixedSky) Classify(context.Context) models.SkyResult {
	f.calls++
	return f.result
}

func clearSky() *fixedSky {
	return &fixedSky{result: models.SkyResult{
		Condition:   models.SkyClear,
		Stats:       &models.SkyStats{Brightness: 230, Saturation: 20},
		Image:       []byte{0x89, 'P', 'N', 'G'},
		ContentType: "image/png",
	}}
}

type recordingSink struct {
	frames    []models.Frame
	resets    []models.ProgressReset
	renderErr error
	onRender  func(models.Frame)
}

func (s *recordingSink) Render(_ context.Context, f models.Frame) error {
	s.frames = append(s.frames, f)
	if s.onRender != nil {
		s.onRender(f)
	}
	return s.renderErr
}

func (s *recordingSink) Reset(_ context.Context, r models.ProgressReset) error {
	s.resets = append(s.resets, r)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	cmds []models.PumpCommand
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, cmd models.PumpCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, cmd)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// harness wires the concrete services over in-memory repos.
type harness struct {
	sessions *memSessionRepo
	events   *memEventRepo
	st       *sessionState
	pub      *recordingPublisher
	sensor   *scriptedSensor
	sky      *fixedSky

	session *SessionService
	sim     *SimulationService
	manual  *ManualService
	sleeps  []time.Duration
}

func newHarness(sensor *scriptedSensor, sky *fixedSky) *harness {
	sessions, events := newMemRepos()
	h := &harness{
		sessions: sessions,
		events:   events,
		pub:      &recordingPublisher{},
		sensor:   sensor,
		sky:      sky,
	}
	h.st = newSessionState(sessions, events, logger.Nop())
	opts := Options{
		Sensor:    sensor,
		Sky:       sky,
		Publisher: h.pub,
		Random:    fixedSource(0.5),
		Log:       logger.Nop(),
	}
	h.session = NewSessionService(h.st, 40)
	h.sim = NewSimulationService(h.st, opts)
	h.sim.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	h.manual = NewManualService(h.st, opts)
	return h
}

func (h *harness) newSession(mode string) models.Session {
	s, err := h.session.Create(context.Background())
	if err != nil {
		panic(err)
	}
	if mode != models.ModeAutomatic {
		if s, err = h.session.Update(context.Background(), s.ID, SessionUpdate{Mode: &mode}); err != nil {
			panic(err)
		}
	}
	return s
}
