package service

import (
	"context"
	"fmt"
	"strings"

	"punogaria/internal/models"
	"punogaria/internal/repository"
)

// EventLogService reads a session's pump audit trail.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// normalized converts the bounds to UTC (zero stays zero) and canonicalises
// the type. The range is inclusive, so equal bounds are fine.
func (f LogFilter) normalized() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !models.IsEventType(f.Type) {
		return LogFilter{}, fmt.Errorf("%w: %q", ErrInvalidEventType, f.Type)
	}
	return f, nil
}

// List returns the events of one session, oldest first.
func (s *EventLogService) List(ctx context.Context, sessionID string, f LogFilter) ([]models.PumpEvent, error) {
	f, err := f.normalized()
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, sessionID, f.From, f.To, f.Type)
}
