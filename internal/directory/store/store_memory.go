package store

import (
	"context"
	"sync"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// InMemoryRecordStore keeps the record log in process memory. It is the
// default backing for tests and single-node development; the Postgres
// implementation carries the same contract for durable deployments.
type InMemoryRecordStore struct {
	mu          sync.RWMutex
	byID        map[models.RecordID]int // index into log
	log         []models.Record
	subscribers []func(models.Record)
}

func NewInMemory() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		byID: make(map[models.RecordID]int),
	}
}

func (s *InMemoryRecordStore) Put(_ context.Context, rec models.Record) (models.RecordID, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}

	s.mu.Lock()
	if _, ok := s.byID[rec.ID]; ok {
		s.mu.Unlock()
		return rec.ID, nil
	}
	rec.Seq = uint64(len(s.log)) + 1
	s.byID[rec.ID] = len(s.log)
	s.log = append(s.log, rec)
	subs := s.subscribers
	s.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read the store.
	for _, fn := range subs {
		fn(rec)
	}
	return rec.ID, nil
}

func (s *InMemoryRecordStore) GetAll(_ context.Context, kind models.RecordKind) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for _, rec := range s.log {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *InMemoryRecordStore) GetForOwner(_ context.Context, kind models.RecordKind, owner domain.AgentID) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Record
	for _, rec := range s.log {
		if rec.Kind != kind {
			continue
		}
		recOwner, err := models.OwnerOf(rec)
		if err != nil {
			// Accepted records always decode; a failure here means memory
			// corruption, not caller error.
			return nil, err
		}
		if recOwner == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *InMemoryRecordStore) Contains(_ context.Context, id models.RecordID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

func (s *InMemoryRecordStore) IDs(_ context.Context) ([]models.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]models.RecordID, 0, len(s.log))
	for _, rec := range s.log {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

func (s *InMemoryRecordStore) Missing(_ context.Context, ids []models.RecordID) ([]models.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []models.RecordID
	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *InMemoryRecordStore) Subscribe(fn func(models.Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
