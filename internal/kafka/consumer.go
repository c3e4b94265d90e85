package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/airscheduling/config"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg config.KafkaConfig, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			GroupID:           cfg.GroupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume delivers raw messages until the context is canceled or the
// handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeOrderEvents decodes each payload as an OrderEvent before handing
// it over. A malformed payload is logged and skipped rather than wedging
// the group on a poison message.
func (c *Consumer) ConsumeOrderEvents(ctx context.Context, handler func(context.Context, OrderEvent) error) error {
	return c.Consume(ctx, decodeOrderEvent(handler))
}

func decodeOrderEvent(handler func(context.Context, OrderEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logging.Warn("failed to decode order event", "error", err, "offset", msg.Offset)
			return nil
		}
		return handler(ctx, event)
	}
}
