package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"punogaria/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

const insertEventSQL = `
		INSERT INTO pump_events (id, session_id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`

// Append inserts a new event. Missing EventID or OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.PumpEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	e.OccurredAt = utcOrNow(e.OccurredAt)

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.SessionID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns a session's events filtered by [from, to] (inclusive) and/or
// type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, sessionID string, from, to time.Time, typ string) ([]models.PumpEvent, error) {
	conds := []string{"session_id = ?"}
	args := []any{sessionID}

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, session_id, occurred_at, type, message, meta FROM pump_events` +
		" WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PumpEvent, 0, 64)
	for rows.Next() {
		var ev models.PumpEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.SessionID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
