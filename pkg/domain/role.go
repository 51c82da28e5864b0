package domain

// RoleName names a community role. The enumeration is open: names outside
// the known set are stored and listed verbatim but carry no capability.
type RoleName string

const (
	RoleFounder             RoleName = "FOUNDER"
	RoleResourceCoordinator RoleName = "RESOURCE_COORDINATOR"
	RoleResourceSteward     RoleName = "RESOURCE_STEWARD"
)

func (r RoleName) String() string {
	return string(r)
}

// IsRecognized reports whether the role name maps to a capability level.
// Unrecognized roles are still valid data, they just resolve to nothing.
func (r RoleName) IsRecognized() bool {
	_, ok := rolePrecedence[r]
	return ok
}

// CapabilityLevel is the derived authority classification of an agent.
// It is never stored; it is always recomputed from the currently held
// role set so that every replica reaches the same answer after
// convergence regardless of the order roles arrived in.
type CapabilityLevel int

const (
	CapabilityNone CapabilityLevel = iota
	CapabilityStewardship
	CapabilityCoordination
	CapabilityGovernance
)

var capabilityNames = map[CapabilityLevel]string{
	CapabilityNone:         "NONE",
	CapabilityStewardship:  "STEWARDSHIP",
	CapabilityCoordination: "COORDINATION",
	CapabilityGovernance:   "GOVERNANCE",
}

func (c CapabilityLevel) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "NONE"
}

// MarshalText renders the level by name for JSON responses.
func (c CapabilityLevel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// rolePrecedence is the fixed role→level table. A plain map lookup keeps
// ResolveCapability a pure reduction with no dispatch or ordering concerns.
var rolePrecedence = map[RoleName]CapabilityLevel{
	RoleFounder:             CapabilityGovernance,
	RoleResourceCoordinator: CapabilityCoordination,
	RoleResourceSteward:     CapabilityStewardship,
}

// ResolveCapability maps a set of held role names to a capability level by
// taking the maximum level any single role grants. Capability is not
// additive: STEWARD plus COORDINATOR yields COORDINATION, not some
// combined value. The reduction is commutative and idempotent over the
// input, so two replicas that have seen the same set compute the same
// level no matter the interleaving in which assignments arrived.
func ResolveCapability(roles map[RoleName]struct{}) CapabilityLevel {
	level := CapabilityNone
	for role := range roles {
		if l, ok := rolePrecedence[role]; ok && l > level {
			level = l
		}
	}
	return level
}
