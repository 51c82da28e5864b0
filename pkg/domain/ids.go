// Package domain defines the typed identifiers and enumerations shared by
// every layer of the directory. Keeping them as distinct types (rather than
// raw uuid.UUID or string) lets the compiler reject cross-wiring, e.g.
// passing a record ID where an agent ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// AgentID identifies a participant. It is opaque to the directory core:
// it is never derived from record contents, always supplied by the caller
// or by the replication layer alongside foreign records.
type AgentID uuid.UUID

// ParseAgentID validates and converts a string into an AgentID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseAgentID(s string) (AgentID, error) {
	if s == "" {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "agent ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "agent ID must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "agent ID cannot be the nil UUID")
	}
	return AgentID(parsed), nil
}

// NewAgentID generates a fresh agent identifier. Used by replica bootstrap
// and tests; production identities normally arrive from configuration.
func NewAgentID() AgentID {
	return AgentID(uuid.New())
}

func (a AgentID) String() string {
	return uuid.UUID(a).String()
}

// IsZero reports whether the ID is unset.
func (a AgentID) IsZero() bool {
	return uuid.UUID(a) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so AgentID round-trips
// through JSON object keys and query parameters.
func (a AgentID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AgentID) UnmarshalText(text []byte) error {
	parsed, err := ParseAgentID(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
