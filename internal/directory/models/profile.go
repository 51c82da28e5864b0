package models

import (
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// PublicProfile is the identity record every member of the community can
// see. One logical profile exists per agent; a later write by the same
// owner supersedes the earlier one by local log order.
//
// Invariants:
//   - Owner is set and equals the record author (only the owner writes
//     their own profile; enforced at the service layer)
//   - Name is non-empty and at most 128 characters
type PublicProfile struct {
	Owner     domain.AgentID `json:"owner"`
	Name      string         `json:"name"`
	AvatarURL string         `json:"avatar_url,omitempty"`
}

// Validate performs the schema check required before a profile record may
// enter the store.
func (p PublicProfile) Validate() error {
	if p.Owner.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecord, "profile owner is required")
	}
	if p.Name == "" {
		return dErrors.New(dErrors.CodeInvalidRecord, "profile name is required")
	}
	if len(p.Name) > 128 {
		return dErrors.New(dErrors.CodeInvalidRecord, "profile name must be 128 characters or less")
	}
	return nil
}

// PrivateProfile holds the owner-only portion of a member's identity.
//
// Invariant: a private profile with Owner = A is never returned to a
// caller other than A, on any query path. The visibility filter is the
// single enforcement point for this rule.
type PrivateProfile struct {
	Owner            domain.AgentID `json:"owner"`
	LegalName        string         `json:"legal_name"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone,omitempty"`
	Address          string         `json:"address,omitempty"`
	EmergencyContact string         `json:"emergency_contact,omitempty"`
	TimeZone         string         `json:"time_zone,omitempty"`
	Location         string         `json:"location,omitempty"`
}

// Validate requires legal name and email; the remaining fields are
// optional contact details.
func (p PrivateProfile) Validate() error {
	if p.Owner.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecord, "private profile owner is required")
	}
	if p.LegalName == "" {
		return dErrors.New(dErrors.CodeInvalidRecord, "legal name is required")
	}
	if p.Email == "" {
		return dErrors.New(dErrors.CodeInvalidRecord, "email is required")
	}
	return nil
}
