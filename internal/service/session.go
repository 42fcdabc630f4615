package service

import (
	"context"
	"fmt"
	"strings"

	"punogaria/internal/irrigation"
	"punogaria/internal/models"

	"github.com/google/uuid"
)

type SessionService struct {
	st               *sessionState
	defaultThreshold float64
}

func NewSessionService(st *sessionState, defaultThreshold float64) *SessionService {
	return &SessionService{st: st, defaultThreshold: defaultThreshold}
}

// Create starts a new session in automatic mode with the pump off.
func (s *SessionService) Create(ctx context.Context) (models.Session, error) {
	now := s.st.now()
	sess := models.Session{
		ID:                uuid.NewString(),
		Mode:              models.ModeAutomatic,
		HumidityThreshold: s.defaultThreshold,
		Override:          overrideFor(false),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.st.sessions.Create(ctx, sess); err != nil {
		return models.Session{}, err
	}
	s.st.log.Infow("session_created", "session_id", sess.ID, "threshold", sess.HumidityThreshold)
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (models.Session, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.load(ctx, id)
}

// normalizeMode lower-cases and validates a mode string.
func normalizeMode(m string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(m)); v {
	case models.ModeAutomatic, models.ModeManual:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
}

// Update changes mode and/or threshold. The mode cannot change while a run
// is active.
func (s *SessionService) Update(ctx context.Context, id string, u SessionUpdate) (models.Session, error) {
	var mode string
	if u.Mode != nil {
		m, err := normalizeMode(*u.Mode)
		if err != nil {
			return models.Session{}, err
		}
		mode = m
	}
	if u.HumidityThreshold != nil {
		if err := irrigation.ValidateThreshold(*u.HumidityThreshold); err != nil {
			return models.Session{}, err
		}
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	sess, err := s.st.load(ctx, id)
	if err != nil {
		return models.Session{}, err
	}

	prevMode := sess.Mode
	modeChanged := mode != "" && mode != prevMode
	if modeChanged && sess.Running {
		return models.Session{}, fmt.Errorf("cannot switch to %s mode: %w", mode, ErrRunInProgress)
	}

	if modeChanged {
		sess.Mode = mode
	}
	if u.HumidityThreshold != nil {
		sess.HumidityThreshold = *u.HumidityThreshold
	}
	sess.UpdatedAt = s.st.now()

	if err := s.st.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}

	if modeChanged {
		err := s.st.appendEvent(ctx, id, models.EventModeChange, "Mode changed to "+mode, map[string]any{
			"from": prevMode,
			"to":   mode,
		})
		if err != nil {
			return models.Session{}, err
		}
		s.st.log.Infow("session_mode_changed", "session_id", id, "from", prevMode, "to", mode)
	}
	return sess, nil
}

// End deletes the session together with its events.
func (s *SessionService) End(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if _, busy := s.st.running[id]; busy {
		return fmt.Errorf("cannot end session: %w", ErrRunInProgress)
	}
	ok, err := s.st.sessions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	s.st.log.Infow("session_ended", "session_id", id)
	return nil
}
