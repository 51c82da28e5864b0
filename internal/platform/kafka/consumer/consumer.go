// Package consumer wraps franz-go group consumption. Handlers receive
// one message at a time; offsets commit only after the handler returns
// without error, so a crashed replica replays rather than drops.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one consumed record.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes consumed messages. Returning an error leaves the
// offset uncommitted.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer polls a topic as part of a consumer group.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// New connects a group consumer to the brokers.
func New(brokers []string, topic, group string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until the context is cancelled. It returns nil on clean
// shutdown and the poll error otherwise.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				c.logger.Error("kafka fetch failed", "topic", fe.Topic, "error", fe.Err)
			}
			continue
		}

		handled := c.handleAll(ctx, fetches.Records())
		if len(handled) > 0 {
			if err := c.client.CommitRecords(ctx, handled...); err != nil {
				c.logger.Error("offset commit failed", "error", err)
			}
		}
	}
}

type topicPartition struct {
	topic     string
	partition int32
}

// handleAll processes records in order and returns the ones safe to
// commit. After a record fails, the rest of its partition is skipped
// and stays uncommitted, so the group resumes from the failure point
// instead of advancing the offset past it.
func (c *Consumer) handleAll(ctx context.Context, recs []*kgo.Record) []*kgo.Record {
	failed := make(map[topicPartition]bool)
	var handled []*kgo.Record
	for _, rec := range recs {
		tp := topicPartition{topic: rec.Topic, partition: rec.Partition}
		if failed[tp] {
			continue
		}
		msg := &Message{Topic: rec.Topic, Key: rec.Key, Value: rec.Value}
		if err := c.handler.Handle(ctx, msg); err != nil {
			c.logger.Error("message handling failed",
				"topic", rec.Topic,
				"partition", rec.Partition,
				"key", string(rec.Key),
				"error", err,
			)
			failed[tp] = true
			continue
		}
		handled = append(handled, rec)
	}
	return handled
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
