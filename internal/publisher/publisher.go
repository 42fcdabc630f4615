// Package publisher ships pump commands to the actuator bus.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"punogaria/internal/logger"
	"punogaria/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers a pump command to whatever drives the physical pump.
type Publisher interface {
	Publish(ctx context.Context, cmd models.PumpCommand) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes commands as JSON keyed by session id, so commands of a
// session stay ordered within a partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
	log   *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w:     newKafkaWriter(brokers, topic),
		topic: topic,
		log:   logger.OrNop(log),
	}
}

func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, cmd models.PumpCommand) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal pump command: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(cmd.SessionID),
		Value: b,
		Time:  cmd.IssuedAt,
	})
	if err != nil {
		p.log.Errorw("pump_command_publish_failed", "topic", p.topic, "session_id", cmd.SessionID, "error", err)
		return fmt.Errorf("write pump command to %s: %w", p.topic, err)
	}
	p.log.Debugw("pump_command_published", "topic", p.topic, "session_id", cmd.SessionID, "state", cmd.State, "source", cmd.Source)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop drops every command. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.PumpCommand) error { return nil }
func (Nop) Close() error                                      { return nil }
