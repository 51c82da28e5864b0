//go:build integration

package replication_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/internal/replication"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	"github.com/TiberiusB/Nondominium/pkg/testutil/containers"
)

type KafkaReplicationSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaReplicationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaReplicationSuite))
}

func (s *KafkaReplicationSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())
}

func (s *KafkaReplicationSuite) TearDownSuite() {
	_ = s.redpanda.Container.Terminate(context.Background())
}

func (s *KafkaReplicationSuite) startPeer(ctx context.Context, topic, group string) (*store.InMemoryRecordStore, *replication.KafkaPeer) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := store.NewInMemory()
	peer, err := replication.NewKafkaPeer(ctx, records, s.redpanda.Brokers, topic, "directory-"+group, logger, nil)
	s.Require().NoError(err)
	go func() { _ = peer.Run(ctx) }()
	return records, peer
}

func (s *KafkaReplicationSuite) TestTwoPeersConverge() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeA, peerA := s.startPeer(ctx, "directory-records-two-peers", "peer-a")
	storeB, peerB := s.startPeer(ctx, "directory-records-two-peers", "peer-b")
	defer peerA.Close()
	defer peerB.Close()

	alice := domain.NewAgentID()
	bob := domain.NewAgentID()

	recA, err := models.NewPublicProfileRecord(models.PublicProfile{Owner: alice, Name: "Alice"})
	s.Require().NoError(err)
	recB, err := models.NewPublicProfileRecord(models.PublicProfile{Owner: bob, Name: "Bob"})
	s.Require().NoError(err)

	_, err = storeA.Put(ctx, recA)
	s.Require().NoError(err)
	_, err = storeB.Put(ctx, recB)
	s.Require().NoError(err)

	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	defer waitCancel()
	s.Require().NoError(replication.Converged(waitCtx, storeA, storeB))

	fromB, err := storeB.GetForOwner(ctx, models.KindPublicProfile, alice)
	s.Require().NoError(err)
	s.Require().Len(fromB, 1)
	s.Equal(recA.ID, fromB[0].ID)

	fromA, err := storeA.GetForOwner(ctx, models.KindPublicProfile, bob)
	s.Require().NoError(err)
	s.Require().Len(fromA, 1)
	s.Equal(recB.ID, fromA[0].ID)
}

func (s *KafkaReplicationSuite) TestLateJoinerCatchesUp() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeA, peerA := s.startPeer(ctx, "directory-records-late-joiner", "late-a")
	defer peerA.Close()

	rec, err := models.NewPublicProfileRecord(models.PublicProfile{
		Owner: domain.NewAgentID(), Name: "Early Bird",
	})
	s.Require().NoError(err)
	_, err = storeA.Put(ctx, rec)
	s.Require().NoError(err)

	// Give the first peer time to publish before the second joins.
	time.Sleep(2 * time.Second)

	storeB, peerB := s.startPeer(ctx, "directory-records-late-joiner", "late-b")
	defer peerB.Close()

	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	defer waitCancel()
	s.Require().NoError(replication.Converged(waitCtx, storeA, storeB))

	ids, err := storeB.IDs(ctx)
	s.Require().NoError(err)
	s.Len(ids, 1)
}
