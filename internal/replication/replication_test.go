package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// captureTransport records broadcast IDs and can fail the first few
// calls to exercise the retry path.
type captureTransport struct {
	mu      sync.Mutex
	failing int
	ids     map[models.RecordID]struct{}
}

func newCaptureTransport(failing int) *captureTransport {
	return &captureTransport{failing: failing, ids: make(map[models.RecordID]struct{})}
}

func (c *captureTransport) Broadcast(_ context.Context, id models.RecordID, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing > 0 {
		c.failing--
		return errors.New("broker unreachable")
	}
	c.ids[id] = struct{}{}
	return nil
}

func (c *captureTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func TestReplicator_QueueOverflowIsRepaired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewInMemory()
	transport := newCaptureTransport(0)
	r := NewReplicator(s, transport, discardLogger(), nil)
	r.retryInterval = 5 * time.Millisecond

	// A burst larger than the broadcast queue, accepted before the Run
	// loop starts draining. The overflow lands in the deferred set and
	// must still reach the transport.
	owner := domain.NewAgentID()
	const total = 300
	for i := 0; i < total; i++ {
		rec := mustProfileRecord(t, owner, fmt.Sprintf("rev %d", i))
		_, err := s.Put(ctx, rec)
		require.NoError(t, err)
	}

	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool { return transport.count() == total },
		2*time.Second, 10*time.Millisecond,
		"every accepted record must eventually broadcast")
}

func TestReplicator_FailedBroadcastsAreRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewInMemory()
	transport := newCaptureTransport(3)
	r := NewReplicator(s, transport, discardLogger(), nil)
	r.retryInterval = 5 * time.Millisecond

	go func() { _ = r.Run(ctx) }()

	owner := domain.NewAgentID()
	for i := 0; i < 3; i++ {
		rec := mustProfileRecord(t, owner, fmt.Sprintf("rev %d", i))
		_, err := s.Put(ctx, rec)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool { return transport.count() == 3 },
		2*time.Second, 10*time.Millisecond,
		"records whose broadcast failed must be retried, not dropped")
}
