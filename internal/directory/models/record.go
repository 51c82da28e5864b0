// Package models defines the record envelope and the three record payloads
// the directory stores. Records are immutable and content-addressed; the
// envelope is what crosses the replication boundary between peers.
package models

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// RecordKind discriminates the payload type inside a record envelope.
type RecordKind string

const (
	KindPublicProfile  RecordKind = "profile-public"
	KindPrivateProfile RecordKind = "profile-private"
	KindRoleAssignment RecordKind = "role-assignment"
)

// IsValid reports whether the kind is one of the three stored kinds.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindPublicProfile, KindPrivateProfile, KindRoleAssignment:
		return true
	}
	return false
}

// RecordID is the content address of a record: the hex-encoded
// BLAKE2b-256 digest over kind, author, and canonical payload bytes.
// Identical payloads from the same author always hash to the same ID,
// which is what makes Put idempotent across retries and re-delivery.
type RecordID string

func (id RecordID) String() string {
	return string(id)
}

// Record is the immutable envelope held by the record store and exchanged
// with peers. Payload is the canonical JSON encoding of one of the three
// payload types; Author is the agent whose process created the record.
//
// Seq is assigned by the local store at acceptance and reflects local
// arrival order only. It is never replicated: two replicas may order the
// same records differently before convergence, and nothing in the core may
// depend on Seq agreeing across replicas.
type Record struct {
	ID      RecordID        `json:"id"`
	Kind    RecordKind      `json:"kind"`
	Author  domain.AgentID  `json:"author"`
	Payload json.RawMessage `json:"payload"`
	Seq     uint64          `json:"-"`
}

// NewRecord builds a content-addressed envelope around an already
// canonical payload. Callers normally go through the typed constructors
// below, which validate and marshal the payload first.
func NewRecord(kind RecordKind, author domain.AgentID, payload []byte) (Record, error) {
	if !kind.IsValid() {
		return Record{}, dErrors.New(dErrors.CodeInvalidRecord, "unknown record kind")
	}
	if author.IsZero() {
		return Record{}, dErrors.New(dErrors.CodeInvalidRecord, "record author is required")
	}
	if len(payload) == 0 {
		return Record{}, dErrors.New(dErrors.CodeInvalidRecord, "record payload is required")
	}
	return Record{
		ID:      contentAddress(kind, author, payload),
		Kind:    kind,
		Author:  author,
		Payload: payload,
	}, nil
}

// Verify recomputes the content address and reports whether it matches the
// envelope's ID. The replication layer calls this on foreign records before
// offering them to the store.
func (r Record) Verify() bool {
	return r.ID == contentAddress(r.Kind, r.Author, r.Payload)
}

func contentAddress(kind RecordKind, author domain.AgentID, payload []byte) RecordID {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(author.String()))
	h.Write([]byte{0})
	h.Write(payload)
	return RecordID(hex.EncodeToString(h.Sum(nil)))
}

// NewPublicProfileRecord validates and wraps a public profile.
func NewPublicProfileRecord(p PublicProfile) (Record, error) {
	if err := p.Validate(); err != nil {
		return Record{}, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "encode public profile")
	}
	return NewRecord(KindPublicProfile, p.Owner, payload)
}

// NewPrivateProfileRecord validates and wraps a private profile.
func NewPrivateProfileRecord(p PrivateProfile) (Record, error) {
	if err := p.Validate(); err != nil {
		return Record{}, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "encode private profile")
	}
	return NewRecord(KindPrivateProfile, p.Owner, payload)
}

// NewRoleAssignmentRecord validates and wraps a role assignment. The
// record author is the issuing agent, not the assignee.
func NewRoleAssignmentRecord(a RoleAssignment) (Record, error) {
	if err := a.Validate(); err != nil {
		return Record{}, err
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "encode role assignment")
	}
	return NewRecord(KindRoleAssignment, a.AssignedBy, payload)
}

// DecodePublicProfile unmarshals a profile-public record payload.
func DecodePublicProfile(r Record) (PublicProfile, error) {
	if r.Kind != KindPublicProfile {
		return PublicProfile{}, dErrors.New(dErrors.CodeInvalidRecord, "record is not a public profile")
	}
	var p PublicProfile
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return PublicProfile{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "decode public profile")
	}
	return p, nil
}

// DecodePrivateProfile unmarshals a profile-private record payload.
func DecodePrivateProfile(r Record) (PrivateProfile, error) {
	if r.Kind != KindPrivateProfile {
		return PrivateProfile{}, dErrors.New(dErrors.CodeInvalidRecord, "record is not a private profile")
	}
	var p PrivateProfile
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return PrivateProfile{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "decode private profile")
	}
	return p, nil
}

// DecodeRoleAssignment unmarshals a role-assignment record payload.
func DecodeRoleAssignment(r Record) (RoleAssignment, error) {
	if r.Kind != KindRoleAssignment {
		return RoleAssignment{}, dErrors.New(dErrors.CodeInvalidRecord, "record is not a role assignment")
	}
	var a RoleAssignment
	if err := json.Unmarshal(r.Payload, &a); err != nil {
		return RoleAssignment{}, dErrors.Wrap(err, dErrors.CodeInvalidRecord, "decode role assignment")
	}
	return a, nil
}

// OwnerOf extracts the logical owner key used by per-owner queries:
// profile records are owned by their subject, assignments by the assignee.
func OwnerOf(r Record) (domain.AgentID, error) {
	switch r.Kind {
	case KindPublicProfile:
		p, err := DecodePublicProfile(r)
		if err != nil {
			return domain.AgentID{}, err
		}
		return p.Owner, nil
	case KindPrivateProfile:
		p, err := DecodePrivateProfile(r)
		if err != nil {
			return domain.AgentID{}, err
		}
		return p.Owner, nil
	case KindRoleAssignment:
		a, err := DecodeRoleAssignment(r)
		if err != nil {
			return domain.AgentID{}, err
		}
		return a.Assignee, nil
	}
	return domain.AgentID{}, dErrors.New(dErrors.CodeInvalidRecord, "unknown record kind")
}
