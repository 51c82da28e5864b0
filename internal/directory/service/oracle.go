package service

import (
	"context"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/roles"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// CapabilityOracle is the default production admission policy: an issuer
// may grant a role only if their own resolved capability already covers
// the level that role would confer. Unrecognized roles confer nothing and
// may be granted by anyone holding at least STEWARDSHIP.
//
// Bootstrap exception: in a community with no role assignments at all,
// an agent may self-assign FOUNDER. Without this no first grant could
// ever be admitted.
type CapabilityOracle struct {
	index *roles.Index
}

func NewCapabilityOracle(index *roles.Index) *CapabilityOracle {
	return &CapabilityOracle{index: index}
}

func (o *CapabilityOracle) MayAssign(_ context.Context, caller domain.AgentID, assignment models.RoleAssignment) (bool, error) {
	callerLevel := o.index.Capability(caller)

	required := domain.ResolveCapability(map[domain.RoleName]struct{}{assignment.RoleName: {}})
	if required == domain.CapabilityNone {
		required = domain.CapabilityStewardship
	}

	if callerLevel >= required {
		return true, nil
	}

	if assignment.RoleName == domain.RoleFounder &&
		assignment.Assignee == caller &&
		o.index.Empty() {
		return true, nil
	}

	return false, nil
}
