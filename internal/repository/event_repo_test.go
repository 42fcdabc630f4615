package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"punogaria/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), "s-1", sqlmock.AnyArg(), "DECISION", "pump ON: low humidity", `{"humidity":12}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx(t), models.PumpEvent{
		SessionID:   "s-1",
		Type:        "  decision ",
		Description: "pump ON: low humidity",
		Metadata:    map[string]any{"humidity": 12},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	mock.ExpectExec("INSERT INTO pump_events").WillReturnError(errors.New("down"))

	err = repo.Append(ctx(t), models.PumpEvent{SessionID: "s-1", Type: "manual_on", Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestList_SessionOnly_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"a": "b"})

	rows := sqlmock.NewRows([]string{"id", "session_id", "occurred_at", "type", "message", "meta"}).
		AddRow("1", "s-1", now, "RUN_START", "m1", string(js)).
		AddRow("2", "s-1", now.Add(time.Hour), "RUN_END", "m2", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, occurred_at, type, message, meta FROM pump_events WHERE session_id = ? ORDER BY occurred_at ASC`)).
		WithArgs("s-1").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), "s-1", time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "1" || got[1].EventID != "2" {
		t.Fatalf("unexpected events: %+v", got)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := `SELECT id, session_id, occurred_at, type, message, meta FROM pump_events WHERE session_id = ? AND occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`
	rows := sqlmock.NewRows([]string{"id", "session_id", "occurred_at", "type", "message", "meta"}).
		AddRow("2", "s-9", from, "DECISION", "b", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("s-9", from, to, "DECISION").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), "s-9", from, to, " decision ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Type != "DECISION" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_QueryError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	mock.ExpectQuery("SELECT id, session_id").WillReturnError(errors.New("boom"))

	if _, err := repo.List(ctx(t), "s-1", time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected error")
	}
}
