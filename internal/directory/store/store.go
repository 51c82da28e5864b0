// Package store holds the append-only, content-addressed record log that
// backs the directory. The log is the single source of truth; everything
// else (role index, latest-profile view) is a projection over it.
package store

import (
	"context"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// RecordStore is the local replica's append-only record log.
//
// Put is idempotent per content address: re-submitting a record that is
// already present (a retry, or re-delivery from a peer) succeeds and
// changes nothing. Records are only ever appended, never rewritten or
// deleted; upsert semantics for profiles live in the read path, which
// picks the latest record per owner by local log order.
type RecordStore interface {
	// Put validates and appends a record, returning its content address.
	// Rejects with a CodeInvalidRecord error when the record fails the
	// schema check; a rejected record never becomes visible anywhere.
	Put(ctx context.Context, rec models.Record) (models.RecordID, error)

	// GetAll returns every record of a kind in local log order.
	GetAll(ctx context.Context, kind models.RecordKind) ([]models.Record, error)

	// GetForOwner returns a kind's records for one owner in local log
	// order. An unknown owner yields an empty slice, not an error.
	GetForOwner(ctx context.Context, kind models.RecordKind, owner domain.AgentID) ([]models.Record, error)

	// Contains reports whether a record is already in the log.
	Contains(ctx context.Context, id models.RecordID) (bool, error)

	// IDs returns the content addresses of every accepted record. Used by
	// the replication layer for convergence checks, not by core reads.
	IDs(ctx context.Context) ([]models.RecordID, error)

	// Missing reports which of the given content addresses are absent
	// from the log. The replication layer's convergence check diffs
	// replicas with it.
	Missing(ctx context.Context, ids []models.RecordID) ([]models.RecordID, error)

	// Subscribe registers a callback invoked synchronously for each newly
	// accepted record (duplicates do not fire). The role index and the
	// outbound replication path both hang off this hook.
	Subscribe(fn func(models.Record))
}

// validateRecord is the schema check every implementation applies before
// accepting a record: the envelope must carry a correct content address
// and the payload must decode and validate for its kind.
func validateRecord(rec models.Record) error {
	if !rec.Kind.IsValid() {
		return dErrors.New(dErrors.CodeInvalidRecord, "unknown record kind")
	}
	if rec.Author.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecord, "record author is required")
	}
	if !rec.Verify() {
		return dErrors.New(dErrors.CodeInvalidRecord, "record content address does not match payload")
	}
	switch rec.Kind {
	case models.KindPublicProfile:
		p, err := models.DecodePublicProfile(rec)
		if err != nil {
			return err
		}
		return p.Validate()
	case models.KindPrivateProfile:
		p, err := models.DecodePrivateProfile(rec)
		if err != nil {
			return err
		}
		return p.Validate()
	case models.KindRoleAssignment:
		a, err := models.DecodeRoleAssignment(rec)
		if err != nil {
			return err
		}
		return a.Validate()
	}
	return nil
}
