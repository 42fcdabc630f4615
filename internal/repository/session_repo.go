package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"punogaria/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

var _ SessionRepo = (*SessionSQLite)(nil)

const (
	insertSessionSQL = `
		INSERT INTO sessions (id, mode, threshold, pump_on, pump_label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	upsertSessionSQL = `
		INSERT INTO sessions (id, mode, threshold, pump_on, pump_label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			threshold=excluded.threshold,
			pump_on=excluded.pump_on,
			pump_label=excluded.pump_label,
			updated_at=excluded.updated_at
	`

	selectSessionSQL = `
		SELECT id, mode, threshold, pump_on, pump_label, created_at, updated_at
		FROM sessions WHERE id=?
	`

	deleteSessionSQL = `DELETE FROM sessions WHERE id=?`
)

func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Create inserts a new session row.
func (r *SessionSQLite) Create(ctx context.Context, s models.Session) error {
	created := utcOrNow(s.CreatedAt)
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, insertSessionSQL,
		s.ID,
		s.Mode,
		s.HumidityThreshold,
		s.Override.PumpOn,
		s.Override.Label,
		created,
		updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session %q: %w", s.ID, err)
	}
	return nil
}

// Get loads a session by id.
func (r *SessionSQLite) Get(ctx context.Context, id string) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL, id)

	var s models.Session
	if err := row.Scan(
		&s.ID,
		&s.Mode,
		&s.HumidityThreshold,
		&s.Override.PumpOn,
		&s.Override.Label,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session %q: %w", id, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// Save updates the session row, inserting it if missing.
func (r *SessionSQLite) Save(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx, upsertSessionSQL,
		s.ID,
		s.Mode,
		s.HumidityThreshold,
		s.Override.PumpOn,
		s.Override.Label,
		utcOrNow(s.CreatedAt),
		utcOrNow(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %q: %w", s.ID, err)
	}
	return nil
}

// Delete removes the session. It reports whether a row existed.
func (r *SessionSQLite) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteSessionSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete session %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for session %q: %w", id, err)
	}
	return n > 0, nil
}
