package handler

import (
	"strings"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
)

// CreateProfileRequest is the HTTP request body for POST /directory/profile.
type CreateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 128 characters")
	}
	return nil
}

// ToProfile builds the domain profile owned by the caller.
func (r *CreateProfileRequest) ToProfile(owner domain.AgentID) models.PublicProfile {
	return models.PublicProfile{
		Owner:     owner,
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
	}
}

// StorePrivateDataRequest is the HTTP request body for
// POST /directory/profile/private.
type StorePrivateDataRequest struct {
	LegalName        string `json:"legal_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	TimeZone         string `json:"time_zone,omitempty"`
	Location         string `json:"location,omitempty"`
}

// Validate validates and normalizes the request.
func (r *StorePrivateDataRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.LegalName = strings.TrimSpace(r.LegalName)
	if r.LegalName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "legal_name is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	return nil
}

// ToPrivateProfile builds the domain private profile owned by the caller.
func (r *StorePrivateDataRequest) ToPrivateProfile(owner domain.AgentID) models.PrivateProfile {
	return models.PrivateProfile{
		Owner:            owner,
		LegalName:        r.LegalName,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		EmergencyContact: r.EmergencyContact,
		TimeZone:         r.TimeZone,
		Location:         r.Location,
	}
}

// AssignRoleRequest is the HTTP request body for POST /directory/roles.
type AssignRoleRequest struct {
	Assignee    string `json:"assignee"`
	RoleName    string `json:"role_name"`
	Description string `json:"description,omitempty"`

	// Parsed values (populated by Validate)
	parsedAssignee domain.AgentID
}

// Validate validates and parses the request.
func (r *AssignRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	assignee, err := domain.ParseAgentID(strings.TrimSpace(r.Assignee))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "assignee is not a valid agent id")
	}
	r.parsedAssignee = assignee

	r.RoleName = strings.TrimSpace(r.RoleName)
	if r.RoleName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "role_name is required")
	}
	return nil
}

// ToAssignment builds the domain assignment issued by the caller.
func (r *AssignRoleRequest) ToAssignment(issuer domain.AgentID) models.RoleAssignment {
	return models.RoleAssignment{
		Assignee:    r.parsedAssignee,
		AssignedBy:  issuer,
		RoleName:    domain.RoleName(r.RoleName),
		Description: r.Description,
	}
}
