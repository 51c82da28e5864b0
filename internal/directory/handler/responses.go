package handler

import (
	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/service"
	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// RecordResponse acknowledges an accepted directory write.
type RecordResponse struct {
	RecordID string `json:"record_id"`
	Kind     string `json:"kind"`
}

// FromRecord converts an accepted record to an HTTP response.
func FromRecord(rec models.Record) *RecordResponse {
	return &RecordResponse{
		RecordID: string(rec.ID),
		Kind:     string(rec.Kind),
	}
}

// PublicProfileResponse is the public half of a member profile.
type PublicProfileResponse struct {
	AgentID   string `json:"agent_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// PrivateProfileResponse is the owner-only half of a member profile.
type PrivateProfileResponse struct {
	LegalName        string `json:"legal_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	TimeZone         string `json:"time_zone,omitempty"`
	Location         string `json:"location,omitempty"`
}

// ProfileResponse is the HTTP response for profile reads. Both halves
// are optional: absence of a half is a normal state, not an error.
type ProfileResponse struct {
	Public  *PublicProfileResponse  `json:"public,omitempty"`
	Private *PrivateProfileResponse `json:"private,omitempty"`
}

// FromProfile converts a domain profile view to an HTTP response.
func FromProfile(p service.Profile) *ProfileResponse {
	resp := &ProfileResponse{}
	if p.Public != nil {
		resp.Public = &PublicProfileResponse{
			AgentID:   p.Public.Owner.String(),
			Name:      p.Public.Name,
			AvatarURL: p.Public.AvatarURL,
		}
	}
	if p.Private != nil {
		resp.Private = &PrivateProfileResponse{
			LegalName:        p.Private.LegalName,
			Email:            p.Private.Email,
			Phone:            p.Private.Phone,
			Address:          p.Private.Address,
			EmergencyContact: p.Private.EmergencyContact,
			TimeZone:         p.Private.TimeZone,
			Location:         p.Private.Location,
		}
	}
	return resp
}

// PersonsResponse is the HTTP response for GET /directory/persons.
type PersonsResponse struct {
	Persons []PublicProfileResponse `json:"persons"`
}

// FromProfiles converts the member list to an HTTP response.
func FromProfiles(profiles []models.PublicProfile) *PersonsResponse {
	persons := make([]PublicProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		persons = append(persons, PublicProfileResponse{
			AgentID:   p.Owner.String(),
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
		})
	}
	return &PersonsResponse{Persons: persons}
}

// RoleResponse is one granted role in a roles listing.
type RoleResponse struct {
	RoleName    string `json:"role_name"`
	AssignedBy  string `json:"assigned_by"`
	Description string `json:"description,omitempty"`
}

// RolesResponse is the HTTP response for GET /directory/persons/{agentID}/roles.
type RolesResponse struct {
	AgentID string         `json:"agent_id"`
	Roles   []RoleResponse `json:"roles"`
}

// FromAssignments converts granted roles to an HTTP response.
func FromAssignments(agentID domain.AgentID, assignments []models.RoleAssignment) *RolesResponse {
	roles := make([]RoleResponse, 0, len(assignments))
	for _, a := range assignments {
		roles = append(roles, RoleResponse{
			RoleName:    string(a.RoleName),
			AssignedBy:  a.AssignedBy.String(),
			Description: a.Description,
		})
	}
	return &RolesResponse{AgentID: agentID.String(), Roles: roles}
}

// CapabilityResponse is the HTTP response for
// GET /directory/persons/{agentID}/capability.
type CapabilityResponse struct {
	AgentID string `json:"agent_id"`
	Level   string `json:"level"`

	// HasRole is present only when the query asked about a specific role.
	HasRole *bool `json:"has_role,omitempty"`
}
