package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"punogaria/internal/models"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockSessions struct {
	sessions  map[string]models.Session
	getErr    error
	createErr error
	updateErr error
	endErr    error

	lastUpdate service.SessionUpdate
	ended      []string
}

func newMockSessions(ss ...models.Session) *mockSessions {
	m := &mockSessions{sessions: map[string]models.Session{}}
	for _, s := range ss {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *mockSessions) Create(ctx context.Context) (models.Session, error) {
	if m.createErr != nil {
		return models.Session{}, m.createErr
	}
	s := models.Session{ID: "new-session", Mode: models.ModeAutomatic, HumidityThreshold: 40,
		Override: models.OverrideState{Label: models.LabelOff}}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessions) Get(ctx context.Context, id string) (models.Session, error) {
	if m.getErr != nil {
		return models.Session{}, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, service.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) Update(ctx context.Context, id string, u service.SessionUpdate) (models.Session, error) {
	m.lastUpdate = u
	if m.updateErr != nil {
		return models.Session{}, m.updateErr
	}
	s := m.sessions[id]
	if u.Mode != nil {
		s.Mode = *u.Mode
	}
	if u.HumidityThreshold != nil {
		s.HumidityThreshold = *u.HumidityThreshold
	}
	m.sessions[id] = s
	return s, nil
}

func (m *mockSessions) End(ctx context.Context, id string) error {
	if m.endErr != nil {
		return m.endErr
	}
	m.ended = append(m.ended, id)
	delete(m.sessions, id)
	return nil
}

// mockSimulation renders frames frames, then a reset, then returns result/err.
// With block set it waits for ctx to end after the first frame.
type mockSimulation struct {
	frames int
	block  bool
	result service.RunResult
	err    error

	mu        sync.Mutex
	calls     int
	lastID    string
	lastP     service.RunParams
	cancelled chan struct{}
}

func (m *mockSimulation) Run(ctx context.Context, sessionID string, p service.RunParams, sink service.DisplaySink) (service.RunResult, error) {
	m.mu.Lock()
	m.calls++
	m.lastID = sessionID
	m.lastP = p
	m.mu.Unlock()

	if m.err != nil {
		return service.RunResult{SessionID: sessionID}, m.err
	}
	for i := 1; i <= m.frames; i++ {
		f := models.Frame{Iteration: i, Total: m.frames, Progress: i * 100 / m.frames}
		if err := sink.Render(ctx, f); err != nil {
			return m.result, err
		}
		if m.block {
			<-ctx.Done()
			if m.cancelled != nil {
				close(m.cancelled)
			}
			_ = sink.Reset(ctx, models.ProgressReset{Elapsed: "Simulation time: 0 seconds"})
			return m.result, ctx.Err()
		}
	}
	_ = sink.Reset(ctx, models.ProgressReset{Elapsed: "Simulation time: 0 seconds"})
	return m.result, nil
}

type mockManual struct {
	result   service.ManualResult
	status   service.ManualStatus
	err      error
	onCalls  int
	offCalls int
	lastID   string
}

func (m *mockManual) TurnOn(ctx context.Context, id string) (service.ManualResult, error) {
	m.onCalls++
	m.lastID = id
	return m.result, m.err
}

func (m *mockManual) TurnOff(ctx context.Context, id string) (service.ManualResult, error) {
	m.offCalls++
	m.lastID = id
	return m.result, m.err
}

func (m *mockManual) Status(ctx context.Context, id string) (service.ManualStatus, error) {
	m.lastID = id
	return m.status, m.err
}

type mockEventLog struct {
	resp        []models.PumpEvent
	err         error
	lastSession string
	lastFrom    time.Time
	lastTo      time.Time
	lastType    string
}

func (m *mockEventLog) List(ctx context.Context, sessionID string, f service.LogFilter) ([]models.PumpEvent, error) {
	m.lastSession = sessionID
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

const testSessionID = "sess-1"

func testSession(mode string) models.Session {
	return models.Session{
		ID:                testSessionID,
		Mode:              mode,
		HumidityThreshold: 40,
		Override:          models.OverrideState{Label: models.LabelOff},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil)
	return h.InitRoutes()
}

func sessionHeaders(id string) http.Header {
	h := http.Header{}
	if id != "" {
		h.Set(sessionHeader, id)
	}
	return h
}
