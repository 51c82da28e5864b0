// Package service implements the directory façade: the only public
// surface of the core. It composes the record store, the visibility
// filter, the role index, and the capability resolver, and consults the
// external admission-control oracle on role assignments.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/roles"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	"github.com/TiberiusB/Nondominium/internal/directory/visibility"
	"github.com/TiberiusB/Nondominium/internal/platform/metrics"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
	"github.com/TiberiusB/Nondominium/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AdmissionOracle

// AdmissionOracle decides whether a caller may issue a role assignment.
// The directory treats it as an external yes/no collaborator; how it
// reaches its verdict is out of the core's hands.
type AdmissionOracle interface {
	MayAssign(ctx context.Context, caller domain.AgentID, assignment models.RoleAssignment) (bool, error)
}

// AllowAll is the permissive oracle used by development wiring and tests
// that are not exercising admission control.
type AllowAll struct{}

func (AllowAll) MayAssign(context.Context, domain.AgentID, models.RoleAssignment) (bool, error) {
	return true, nil
}

// Profile is the visibility-filtered answer to a profile query. Private
// is nil unless the requester owns it; either part may be nil when the
// corresponding record has not arrived on this replica yet - absence is a
// normal state under partial replication, not an error.
type Profile struct {
	Public  *models.PublicProfile  `json:"public,omitempty"`
	Private *models.PrivateProfile `json:"private,omitempty"`
}

// Service is the directory façade.
type Service struct {
	records store.RecordStore
	index   *roles.Index
	oracle  AdmissionOracle
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithOracle(oracle AdmissionOracle) Option {
	return func(s *Service) { s.oracle = oracle }
}

func New(records store.RecordStore, index *roles.Index, opts ...Option) *Service {
	s := &Service{
		records: records,
		index:   index,
		oracle:  AllowAll{},
		logger:  slog.Default(),
		tracer:  otel.Tracer("nondominium/directory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProfile stores the caller's public profile. A later call by the
// same owner supersedes the earlier profile; an identical payload is an
// idempotent no-op thanks to content addressing.
func (s *Service) CreateProfile(ctx context.Context, caller domain.AgentID, profile models.PublicProfile) (models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.CreateProfile", trace.WithAttributes(
		attribute.String("agent.id", caller.String()),
	))
	defer span.End()

	if profile.Owner != caller {
		return models.Record{}, dErrors.New(dErrors.CodeNotSelf, "only the owner may write their own profile")
	}

	rec, err := models.NewPublicProfileRecord(profile)
	if err != nil {
		return models.Record{}, err
	}
	if _, err := s.records.Put(ctx, rec); err != nil {
		return models.Record{}, err
	}

	s.metrics.IncrementProfilesCreated()
	s.logger.InfoContext(ctx, "public profile stored",
		"agent_id", caller,
		"record_id", rec.ID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
	)
	return rec, nil
}

// StorePrivateData stores the caller's private profile under the same
// self-only rule as CreateProfile.
func (s *Service) StorePrivateData(ctx context.Context, caller domain.AgentID, private models.PrivateProfile) (models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.StorePrivateData", trace.WithAttributes(
		attribute.String("agent.id", caller.String()),
	))
	defer span.End()

	if private.Owner != caller {
		return models.Record{}, dErrors.New(dErrors.CodeNotSelf, "only the owner may store their own private data")
	}

	rec, err := models.NewPrivateProfileRecord(private)
	if err != nil {
		return models.Record{}, err
	}
	if _, err := s.records.Put(ctx, rec); err != nil {
		return models.Record{}, err
	}

	s.metrics.IncrementPrivateDataStored()
	s.logger.InfoContext(ctx, "private profile stored",
		"agent_id", caller,
		"record_id", rec.ID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
	)
	return rec, nil
}

// GetMyProfile returns both halves of the caller's own profile. Private
// is present whenever the caller has stored it, because requester and
// owner coincide.
func (s *Service) GetMyProfile(ctx context.Context, caller domain.AgentID) (Profile, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.GetMyProfile")
	defer span.End()

	return s.profileFor(ctx, caller, caller)
}

// GetPersonProfile returns another member's profile from the caller's
// vantage point. The private half is absent unless target == caller.
func (s *Service) GetPersonProfile(ctx context.Context, caller, target domain.AgentID) (Profile, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.GetPersonProfile", trace.WithAttributes(
		attribute.String("target.id", target.String()),
	))
	defer span.End()

	return s.profileFor(ctx, caller, target)
}

// profileFor assembles a Profile by reading each half from the store and
// routing every record through the visibility filter. There is no raw
// read path to a profile record anywhere else in the service.
func (s *Service) profileFor(ctx context.Context, requester, owner domain.AgentID) (Profile, error) {
	var view Profile

	pubRecs, err := s.records.GetForOwner(ctx, models.KindPublicProfile, owner)
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "read public profile")
	}
	if rec, ok := latestVisible(pubRecs, requester); ok {
		p, err := models.DecodePublicProfile(rec)
		if err != nil {
			return Profile{}, err
		}
		view.Public = &p
	}

	privRecs, err := s.records.GetForOwner(ctx, models.KindPrivateProfile, owner)
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "read private profile")
	}
	if rec, ok := latestVisible(privRecs, requester); ok {
		p, err := models.DecodePrivateProfile(rec)
		if err != nil {
			return Profile{}, err
		}
		view.Private = &p
	}

	return view, nil
}

// latestVisible filters records through the visibility filter per record
// and picks the most recent survivor by local log order.
func latestVisible(recs []models.Record, requester domain.AgentID) (models.Record, bool) {
	visible := visibility.FilterAll(recs, requester)
	if len(visible) == 0 {
		return models.Record{}, false
	}
	return visible[len(visible)-1], true
}

// GetAllPersons lists the community: one public profile per distinct
// owner, most recent record per owner, ordered by each owner's first
// appearance in the local log. Only the public kind is ever consulted,
// and even that passes the filter so no bulk path can bypass it.
func (s *Service) GetAllPersons(ctx context.Context, caller domain.AgentID) ([]models.PublicProfile, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.GetAllPersons")
	defer span.End()

	recs, err := s.records.GetAll(ctx, models.KindPublicProfile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list public profiles")
	}

	latest := make(map[domain.AgentID]models.PublicProfile)
	var order []domain.AgentID
	for _, rec := range visibility.FilterAll(recs, caller) {
		p, err := models.DecodePublicProfile(rec)
		if err != nil {
			return nil, err
		}
		if _, seen := latest[p.Owner]; !seen {
			order = append(order, p.Owner)
		}
		latest[p.Owner] = p
	}

	out := make([]models.PublicProfile, 0, len(order))
	for _, owner := range order {
		out = append(out, latest[owner])
	}
	return out, nil
}

// AssignRole records a role grant after the admission-control oracle
// accepts it. The caller must be the issuer; the oracle decides whether
// that issuer is entitled to grant this role.
func (s *Service) AssignRole(ctx context.Context, caller domain.AgentID, assignment models.RoleAssignment) (models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "Directory.AssignRole", trace.WithAttributes(
		attribute.String("assignee.id", assignment.Assignee.String()),
		attribute.String("role.name", assignment.RoleName.String()),
	))
	defer span.End()

	if assignment.AssignedBy != caller {
		return models.Record{}, dErrors.New(dErrors.CodeNotSelf, "assignments must be issued as yourself")
	}
	if err := assignment.Validate(); err != nil {
		return models.Record{}, err
	}

	allowed, err := s.oracle.MayAssign(ctx, caller, assignment)
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "admission control unavailable")
	}
	if !allowed {
		s.metrics.IncrementAssignmentsRejected()
		s.logger.WarnContext(ctx, "role assignment denied",
			"issuer", caller,
			"assignee", assignment.Assignee,
			"role", assignment.RoleName,
		)
		return models.Record{}, dErrors.New(dErrors.CodeNotAuthorized, "caller is not authorized to assign this role")
	}

	rec, err := models.NewRoleAssignmentRecord(assignment)
	if err != nil {
		return models.Record{}, err
	}
	if _, err := s.records.Put(ctx, rec); err != nil {
		return models.Record{}, err
	}

	s.metrics.IncrementRolesAssigned()
	s.logger.InfoContext(ctx, "role assigned",
		"issuer", caller,
		"assignee", assignment.Assignee,
		"role", assignment.RoleName,
		"record_id", rec.ID,
	)
	return rec, nil
}

// GetPersonRoles lists every grant held by the target in local arrival
// order, each with its issuer. Roles are public: no filtering applies.
func (s *Service) GetPersonRoles(ctx context.Context, target domain.AgentID) ([]models.RoleAssignment, error) {
	_, span := s.tracer.Start(ctx, "Directory.GetPersonRoles", trace.WithAttributes(
		attribute.String("target.id", target.String()),
	))
	defer span.End()

	return s.index.AssignmentsOf(target), nil
}

// HasRoleCapability is a membership test on the target's deduplicated
// role set.
func (s *Service) HasRoleCapability(ctx context.Context, target domain.AgentID, role domain.RoleName) (bool, error) {
	_, span := s.tracer.Start(ctx, "Directory.HasRoleCapability")
	defer span.End()

	return s.index.HasRole(target, role), nil
}

// GetCapabilityLevel resolves the target's capability from its current
// role set. An agent with no (recognized) roles resolves to NONE.
func (s *Service) GetCapabilityLevel(ctx context.Context, target domain.AgentID) (domain.CapabilityLevel, error) {
	_, span := s.tracer.Start(ctx, "Directory.GetCapabilityLevel")
	defer span.End()

	return s.index.Capability(target), nil
}
