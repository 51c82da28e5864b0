// Package visibility is the single enforcement point for the directory's
// privacy rule: private profile records are visible to their owner and to
// nobody else. Every read path routes each record through Reveal before it
// can reach a caller; no layer above or below applies its own masking.
package visibility

import (
	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// Reveal decides whether a requesting agent may see a record. It returns
// the record unchanged and true when visible, and the zero record and
// false when the record must be omitted entirely. Omission, not masking:
// a caller who is not the owner cannot observe that a private record
// exists at all.
//
// Rule table:
//
//	public profile   -> visible to everyone
//	private profile  -> visible to the owner only
//	role assignment  -> visible to everyone (roles are public)
func Reveal(rec models.Record, requester domain.AgentID) (models.Record, bool) {
	if rec.Kind != models.KindPrivateProfile {
		return rec, true
	}
	owner, err := models.OwnerOf(rec)
	if err != nil {
		// An undecodable private record reveals nothing to anyone.
		return models.Record{}, false
	}
	if owner != requester {
		return models.Record{}, false
	}
	return rec, true
}

// FilterAll applies Reveal per record, preserving order. Bulk queries call
// this instead of applying a blanket check to the whole response, so a
// join can never leak a private record for a different owner.
func FilterAll(recs []models.Record, requester domain.AgentID) []models.Record {
	var out []models.Record
	for _, rec := range recs {
		if visible, ok := Reveal(rec, requester); ok {
			out = append(out, visible)
		}
	}
	return out
}
