// Package replication moves accepted records between replicas. Records
// are content addressed, so delivery may be repeated, reordered, or
// interleaved across writers; every replica converges on the same log
// contents regardless. Inbound records go through the same validated
// store path as local writes, and a record that fails validation is
// dropped without poisoning the rest of the stream.
package replication

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/internal/platform/metrics"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// Transport carries encoded records to peer replicas.
type Transport interface {
	// Broadcast publishes one encoded record, keyed by its content
	// address so log-compacted transports keep exactly one copy.
	Broadcast(ctx context.Context, id models.RecordID, encoded []byte) error
}

// Replicator connects a local record store to a transport: local
// accepts go out, peer records come in through Apply.
type Replicator struct {
	records   store.RecordStore
	transport Transport
	logger    *slog.Logger
	metrics   *metrics.Metrics

	applyCh       chan models.Record
	retryInterval time.Duration

	// inApply marks records currently being applied from a peer so the
	// store subscription does not echo them back out. deferred holds
	// records that missed the queue or whose broadcast failed; the Run
	// loop retries them until the transport takes them.
	mu       sync.Mutex
	inApply  map[models.RecordID]struct{}
	deferred map[models.RecordID]models.Record
}

// NewReplicator wires the replicator to the store's accept hook. The
// returned replicator does not publish anything until Run is called.
func NewReplicator(records store.RecordStore, transport Transport, logger *slog.Logger, m *metrics.Metrics) *Replicator {
	r := &Replicator{
		records:       records,
		transport:     transport,
		logger:        logger,
		metrics:       m,
		applyCh:       make(chan models.Record, 256),
		retryInterval: 2 * time.Second,
		inApply:       make(map[models.RecordID]struct{}),
		deferred:      make(map[models.RecordID]models.Record),
	}
	records.Subscribe(r.onAccept)
	return r
}

// onAccept queues a newly accepted local record for broadcast. The
// store invokes this synchronously, so the actual publish happens on
// the Run goroutine.
func (r *Replicator) onAccept(rec models.Record) {
	r.mu.Lock()
	_, fromPeer := r.inApply[rec.ID]
	r.mu.Unlock()
	if fromPeer {
		return
	}
	select {
	case r.applyCh <- rec:
	default:
		// Queue full under burst; the retry ticker in Run picks the
		// record up from the deferred set.
		r.stash(rec)
		r.logger.Warn("replication queue full, record deferred",
			"record_id", rec.ID,
		)
	}
}

// Run drains the broadcast queue until the context is cancelled. A
// retry ticker rebroadcasts deferred records, so every locally accepted
// record eventually reaches the transport even after a queue overflow
// or a broadcast failure.
func (r *Replicator) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case rec := <-r.applyCh:
			if err := r.publish(ctx, rec); err != nil {
				r.logger.Warn("record broadcast failed, deferred",
					"record_id", rec.ID, "error", err)
				r.stash(rec)
			}
		case <-ticker.C:
			r.flushDeferred(ctx)
		}
	}
}

func (r *Replicator) publish(ctx context.Context, rec models.Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		// Accepted records are plain structs; an encode failure is a
		// programming error and retrying cannot help.
		r.logger.Error("record encode failed", "record_id", rec.ID, "error", err)
		return nil
	}
	if err := r.transport.Broadcast(ctx, rec.ID, encoded); err != nil {
		return err
	}
	r.metrics.IncrementRecordsReplicatedOut()
	return nil
}

func (r *Replicator) stash(rec models.Record) {
	r.mu.Lock()
	r.deferred[rec.ID] = rec
	r.mu.Unlock()
}

func (r *Replicator) flushDeferred(ctx context.Context) {
	r.mu.Lock()
	pending := make([]models.Record, 0, len(r.deferred))
	for _, rec := range r.deferred {
		pending = append(pending, rec)
	}
	r.mu.Unlock()

	for _, rec := range pending {
		if err := r.publish(ctx, rec); err != nil {
			r.logger.Warn("record broadcast retry failed",
				"record_id", rec.ID, "error", err)
			continue
		}
		r.mu.Lock()
		delete(r.deferred, rec.ID)
		r.mu.Unlock()
	}
}

// Apply ingests one encoded record from a peer. Duplicates are silent
// no-ops; records that fail validation are rejected and logged but do
// not error the stream.
func (r *Replicator) Apply(ctx context.Context, encoded []byte) error {
	var rec models.Record
	if err := json.Unmarshal(encoded, &rec); err != nil {
		r.logger.Warn("peer record decode failed", "error", err)
		return nil
	}

	seen, err := r.records.Contains(ctx, rec.ID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	r.mu.Lock()
	r.inApply[rec.ID] = struct{}{}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inApply, rec.ID)
		r.mu.Unlock()
	}()

	if _, err := r.records.Put(ctx, rec); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidRecord) {
			r.logger.Warn("peer record rejected",
				"record_id", rec.ID,
				"kind", rec.Kind,
				"error", err,
			)
			return nil
		}
		return err
	}

	r.metrics.IncrementRecordsReplicatedIn()
	return nil
}
