package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"punogaria/internal/logger"
	"punogaria/internal/models"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &KafkaPublisher{w: fw, topic: "pump.commands", log: logger.Nop()}

	issued := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	cmd := models.PumpCommand{
		SessionID: "s-1",
		State:     models.PumpOn,
		Reason:    "low humidity",
		Source:    models.CommandSourceAuto,
		IssuedAt:  issued,
	}
	if err := p.Publish(context.Background(), cmd); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	msg := fw.msgs[0]
	if string(msg.Key) != "s-1" || !msg.Time.Equal(issued) {
		t.Fatalf("unexpected key/time: %q %v", msg.Key, msg.Time)
	}
	var got models.PumpCommand
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.State != models.PumpOn || got.Reason != "low humidity" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if err := p.Close(); err != nil || !fw.closed {
		t.Fatalf("Close: %v closed=%v", err, fw.closed)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}, topic: "pump.commands", log: logger.Nop()}

	err := p.Publish(context.Background(), models.PumpCommand{SessionID: "s-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
