// Package roles maintains the role index: a derived, insertion-only view
// over role-assignment records, grouped by assignee. The index is never
// the source of truth; it can be rebuilt from the record log at any time.
package roles

import (
	"context"
	"sync"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// Index accumulates role assignments per assignee as records are accepted,
// whether written locally or delivered by a peer. Accumulation is
// monotonic: there is no removal path, so concurrent writers converging in
// any interleaving reach the same index state.
type Index struct {
	mu          sync.RWMutex
	byAssignee  map[domain.AgentID][]models.RoleAssignment
	namesByID   map[domain.AgentID]map[domain.RoleName]struct{}
	seenRecords map[models.RecordID]struct{}
}

// NewIndex creates an empty index and subscribes it to the store so every
// newly accepted role-assignment record is folded in immediately.
func NewIndex(recordStore store.RecordStore) *Index {
	idx := &Index{
		byAssignee:  make(map[domain.AgentID][]models.RoleAssignment),
		namesByID:   make(map[domain.AgentID]map[domain.RoleName]struct{}),
		seenRecords: make(map[models.RecordID]struct{}),
	}
	recordStore.Subscribe(idx.observe)
	return idx
}

// Rebuild recomputes the index from scratch out of the record log. Used at
// startup with a durable store, and by tests to check that the incremental
// and recomputed views agree.
func (idx *Index) Rebuild(ctx context.Context, recordStore store.RecordStore) error {
	recs, err := recordStore.GetAll(ctx, models.KindRoleAssignment)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.byAssignee = make(map[domain.AgentID][]models.RoleAssignment)
	idx.namesByID = make(map[domain.AgentID]map[domain.RoleName]struct{})
	idx.seenRecords = make(map[models.RecordID]struct{})
	idx.mu.Unlock()

	for _, rec := range recs {
		idx.observe(rec)
	}
	return nil
}

// observe folds one accepted record into the index. Non-assignment kinds
// and already-seen records are ignored, so re-delivery is harmless.
func (idx *Index) observe(rec models.Record) {
	if rec.Kind != models.KindRoleAssignment {
		return
	}
	assignment, err := models.DecodeRoleAssignment(rec)
	if err != nil {
		// The store validated this payload at acceptance; nothing to do.
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, dup := idx.seenRecords[rec.ID]; dup {
		return
	}
	idx.seenRecords[rec.ID] = struct{}{}

	idx.byAssignee[assignment.Assignee] = append(idx.byAssignee[assignment.Assignee], assignment)
	names := idx.namesByID[assignment.Assignee]
	if names == nil {
		names = make(map[domain.RoleName]struct{})
		idx.namesByID[assignment.Assignee] = names
	}
	names[assignment.RoleName] = struct{}{}
}

// RolesOf returns the deduplicated role-name set an agent currently holds.
// This is the input to capability resolution; duplicates across multiple
// grant records collapse to membership.
func (idx *Index) RolesOf(agent domain.AgentID) map[domain.RoleName]struct{} {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[domain.RoleName]struct{}, len(idx.namesByID[agent]))
	for name := range idx.namesByID[agent] {
		out[name] = struct{}{}
	}
	return out
}

// AssignmentsOf returns every individual grant for an agent in local
// arrival order, each with its issuer, for audit and listing. Distinct
// from RolesOf: duplicates are preserved here.
func (idx *Index) AssignmentsOf(agent domain.AgentID) []models.RoleAssignment {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]models.RoleAssignment(nil), idx.byAssignee[agent]...)
}

// HasRole reports membership of a single role in the agent's set.
func (idx *Index) HasRole(agent domain.AgentID, role domain.RoleName) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	_, ok := idx.namesByID[agent][role]
	return ok
}

// Empty reports whether no assignment has been indexed yet. Admission
// policies use this for community bootstrap.
func (idx *Index) Empty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.seenRecords) == 0
}

// Capability resolves the agent's current capability level from its role
// set. Pure reduction over the set; see domain.ResolveCapability.
func (idx *Index) Capability(agent domain.AgentID) domain.CapabilityLevel {
	return domain.ResolveCapability(idx.RolesOf(agent))
}
