package replication

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/internal/platform/kafka/consumer"
	"github.com/TiberiusB/Nondominium/internal/platform/kafka/producer"
	"github.com/TiberiusB/Nondominium/internal/platform/metrics"
)

// KafkaPeer replicates through a shared Kafka topic. Every replica
// publishes its accepted records and consumes everyone's; content
// addressing makes redelivery harmless, so at-least-once is enough.
type KafkaPeer struct {
	replicator *Replicator
	producer   *producer.Producer
	consumer   *consumer.Consumer
	logger     *slog.Logger
}

// kafkaTransport adapts the producer to the Transport interface.
type kafkaTransport struct {
	producer *producer.Producer
}

func (t *kafkaTransport) Broadcast(ctx context.Context, id models.RecordID, encoded []byte) error {
	return t.producer.Publish(ctx, []byte(id), encoded)
}

// applyHandler feeds consumed records into the replicator.
type applyHandler struct {
	replicator *Replicator
}

func (h *applyHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	return h.replicator.Apply(ctx, msg.Value)
}

// NewKafkaPeer connects a store to the record topic. Each replica joins
// its own consumer group so every replica sees the full stream; the
// group name must therefore be unique per replica.
func NewKafkaPeer(ctx context.Context, records store.RecordStore, brokers []string, topic, group string, logger *slog.Logger, m *metrics.Metrics) (*KafkaPeer, error) {
	prod, err := producer.New(ctx, brokers, topic, logger)
	if err != nil {
		return nil, fmt.Errorf("replication producer: %w", err)
	}

	repl := NewReplicator(records, &kafkaTransport{producer: prod}, logger, m)

	cons, err := consumer.New(brokers, topic, group, &applyHandler{replicator: repl}, logger)
	if err != nil {
		prod.Close()
		return nil, fmt.Errorf("replication consumer: %w", err)
	}

	return &KafkaPeer{
		replicator: repl,
		producer:   prod,
		consumer:   cons,
		logger:     logger,
	}, nil
}

// Run drives both directions until the context is cancelled.
func (p *KafkaPeer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.replicator.Run(ctx) })
	g.Go(func() error { return p.consumer.Run(ctx) })
	return g.Wait()
}

// Close releases the Kafka clients.
func (p *KafkaPeer) Close() {
	p.consumer.Close()
	p.producer.Close()
}
