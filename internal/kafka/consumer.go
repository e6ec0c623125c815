package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is done or the reader fails. Messages that are not
// valid booking events are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, err := DecodeEvent(msg)
		if err != nil {
			c.log.Warn("skip undecodable event", "offset", msg.Offset, "error", err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

// DecodeEvent parses a booking event and rejects unknown types and events
// without a booking number.
func DecodeEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return event, err
	}
	switch event.Type {
	case EventBookingCreated, EventBookingCancelled:
	default:
		return event, fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.BookingNumber == "" {
		return event, errors.New("event without booking number")
	}
	return event, nil
}
