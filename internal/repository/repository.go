package repository

import (
	"context"
	"database/sql"
	"time"

	"punogaria/internal/models"
)

// SessionRepo stores per-session settings and the manual override flag.
type SessionRepo interface {
	Create(ctx context.Context, s models.Session) error
	// Get returns (nil, nil) when the session does not exist.
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s models.Session) error
	// Delete removes the session and, through the foreign key, its events.
	Delete(ctx context.Context, id string) (bool, error)
}

// EventRepo is the per-session pump audit trail.
type EventRepo interface {
	Append(ctx context.Context, e models.PumpEvent) error
	List(ctx context.Context, sessionID string, from, to time.Time, typ string) ([]models.PumpEvent, error)
}

type Repository struct {
	Sessions SessionRepo
	Events   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Sessions: NewSessionSQLite(db),
		Events:   NewEventSQLite(db),
	}
}
