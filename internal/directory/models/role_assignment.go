package models

import (
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// RoleAssignment records one grant of a role to an agent. Assignments are
// immutable once accepted and are never revoked in this core; an agent's
// effective role set is simply the deduplicated names across all of its
// assignment records. Duplicate grants of the same role (possibly from
// different issuers) are tolerated and collapse to set membership, while
// each individual record is preserved for listing with its issuer.
type RoleAssignment struct {
	Assignee    domain.AgentID  `json:"assignee"`
	AssignedBy  domain.AgentID  `json:"assigned_by"`
	RoleName    domain.RoleName `json:"role_name"`
	Description string          `json:"description,omitempty"`
}

// Validate performs the schema check. Unrecognized role names pass: the
// enumeration is open and unknown roles simply resolve to no capability.
func (a RoleAssignment) Validate() error {
	if a.Assignee.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecord, "assignment assignee is required")
	}
	if a.AssignedBy.IsZero() {
		return dErrors.New(dErrors.CodeInvalidRecord, "assignment issuer is required")
	}
	if a.RoleName == "" {
		return dErrors.New(dErrors.CodeInvalidRecord, "assignment role name is required")
	}
	return nil
}
