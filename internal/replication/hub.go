package replication

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/internal/platform/metrics"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// Hub is an in-process transport connecting replicas in the same
// process. It backs multi-replica tests and single-binary deployments;
// production replicas use the Kafka transport instead.
type Hub struct {
	mu      sync.RWMutex
	members []*Replicator
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// hubLink is one member's view of the hub.
type hubLink struct {
	hub  *Hub
	self *Replicator
}

// Broadcast delivers the record to every other member synchronously.
func (l *hubLink) Broadcast(ctx context.Context, _ models.RecordID, encoded []byte) error {
	l.hub.mu.RLock()
	peers := make([]*Replicator, 0, len(l.hub.members))
	for _, m := range l.hub.members {
		if m != l.self {
			peers = append(peers, m)
		}
	}
	l.hub.mu.RUnlock()

	for _, peer := range peers {
		if err := peer.Apply(ctx, encoded); err != nil {
			return err
		}
	}
	return nil
}

// Attach creates a replicator for a store and joins it to the hub.
func (h *Hub) Attach(records store.RecordStore, logger *slog.Logger, m *metrics.Metrics) *Replicator {
	link := &hubLink{hub: h}
	r := NewReplicator(records, link, logger, m)
	link.self = r

	h.mu.Lock()
	h.members = append(h.members, r)
	h.mu.Unlock()
	return r
}

// Converged blocks until every store holds the same record ID set, or
// the context expires. Replicas exchanging records asynchronously reach
// this state once all queues drain.
func Converged(ctx context.Context, stores ...store.RecordStore) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		same, err := sameIDSets(ctx, stores)
		if err != nil {
			return err
		}
		if same {
			return nil
		}
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "replicas did not converge")
		case <-ticker.C:
		}
	}
}

// sameIDSets reports whether every store holds every other store's
// records, using each store's Missing diff.
func sameIDSets(ctx context.Context, stores []store.RecordStore) (bool, error) {
	for i, s := range stores {
		ids, err := s.IDs(ctx)
		if err != nil {
			return false, err
		}
		for j, other := range stores {
			if i == j {
				continue
			}
			missing, err := other.Missing(ctx, ids)
			if err != nil {
				return false, err
			}
			if len(missing) > 0 {
				return false, nil
			}
		}
	}
	return true, nil
}
