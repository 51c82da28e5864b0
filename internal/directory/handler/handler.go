package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/service"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
	"github.com/TiberiusB/Nondominium/pkg/platform/httputil"
	"github.com/TiberiusB/Nondominium/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for directory operations.
type Service interface {
	CreateProfile(ctx context.Context, caller domain.AgentID, profile models.PublicProfile) (models.Record, error)
	StorePrivateData(ctx context.Context, caller domain.AgentID, private models.PrivateProfile) (models.Record, error)
	GetMyProfile(ctx context.Context, caller domain.AgentID) (service.Profile, error)
	GetPersonProfile(ctx context.Context, caller, target domain.AgentID) (service.Profile, error)
	GetAllPersons(ctx context.Context, caller domain.AgentID) ([]models.PublicProfile, error)
	AssignRole(ctx context.Context, caller domain.AgentID, assignment models.RoleAssignment) (models.Record, error)
	GetPersonRoles(ctx context.Context, target domain.AgentID) ([]models.RoleAssignment, error)
	HasRoleCapability(ctx context.Context, target domain.AgentID, role domain.RoleName) (bool, error)
	GetCapabilityLevel(ctx context.Context, target domain.AgentID) (domain.CapabilityLevel, error)
}

// Handler wires directory endpoints to the directory service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a directory handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts all directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	h.RegisterWrites(r)
	h.RegisterReads(r)
}

// RegisterWrites mounts the record-producing endpoints. Kept separate
// so the caller can wrap them with the write rate limiter.
func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/directory/profile", h.HandleCreateProfile)
	r.Post("/directory/profile/private", h.HandleStorePrivateData)
	r.Post("/directory/roles", h.HandleAssignRole)
}

// RegisterReads mounts the query endpoints.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/directory/me", h.HandleGetMyProfile)
	r.Get("/directory/persons", h.HandleGetAllPersons)
	r.Get("/directory/persons/{agentID}", h.HandleGetPersonProfile)
	r.Get("/directory/persons/{agentID}/roles", h.HandleGetPersonRoles)
	r.Get("/directory/persons/{agentID}/capability", h.HandleGetCapability)
}

// caller returns the authenticated agent, writing 401 when absent.
func (h *Handler) caller(w http.ResponseWriter, ctx context.Context) (domain.AgentID, bool) {
	agentID := requestcontext.AgentID(ctx)
	if agentID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.AgentID{}, false
	}
	return agentID, true
}

// pathAgentID parses the {agentID} URL parameter, writing 400 when invalid.
func (h *Handler) pathAgentID(w http.ResponseWriter, r *http.Request) (domain.AgentID, bool) {
	agentID, err := domain.ParseAgentID(chi.URLParam(r, "agentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid agent id"))
		return domain.AgentID{}, false
	}
	return agentID, true
}

// HandleCreateProfile handles POST /directory/profile requests.
func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.CreateProfile(ctx, caller, req.ToProfile(caller))
	if err != nil {
		h.logger.ErrorContext(ctx, "profile creation failed",
			"request_id", requestID,
			"agent_id", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "profile created",
		"request_id", requestID,
		"agent_id", caller,
		"record_id", rec.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleStorePrivateData handles POST /directory/profile/private requests.
func (h *Handler) HandleStorePrivateData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[StorePrivateDataRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.StorePrivateData(ctx, caller, req.ToPrivateProfile(caller))
	if err != nil {
		h.logger.ErrorContext(ctx, "private data store failed",
			"request_id", requestID,
			"agent_id", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "private data stored",
		"request_id", requestID,
		"agent_id", caller,
		"record_id", rec.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleAssignRole handles POST /directory/roles requests.
func (h *Handler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.AssignRole(ctx, caller, req.ToAssignment(caller))
	if err != nil {
		h.logger.WarnContext(ctx, "role assignment rejected",
			"request_id", requestID,
			"agent_id", caller,
			"assignee", req.Assignee,
			"role", req.RoleName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "role assigned",
		"request_id", requestID,
		"agent_id", caller,
		"assignee", req.Assignee,
		"role", req.RoleName,
		"record_id", rec.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleGetMyProfile handles GET /directory/me requests.
func (h *Handler) HandleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	profile, err := h.service.GetMyProfile(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleGetAllPersons handles GET /directory/persons requests.
func (h *Handler) HandleGetAllPersons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	persons, err := h.service.GetAllPersons(ctx, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfiles(persons))
}

// HandleGetPersonProfile handles GET /directory/persons/{agentID} requests.
func (h *Handler) HandleGetPersonProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	target, ok := h.pathAgentID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetPersonProfile(ctx, caller, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleGetPersonRoles handles GET /directory/persons/{agentID}/roles requests.
func (h *Handler) HandleGetPersonRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := h.caller(w, ctx); !ok {
		return
	}
	target, ok := h.pathAgentID(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.GetPersonRoles(ctx, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAssignments(target, assignments))
}

// HandleGetCapability handles GET /directory/persons/{agentID}/capability
// requests. With a ?role= query parameter the response additionally says
// whether that specific role is held.
func (h *Handler) HandleGetCapability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := h.caller(w, ctx); !ok {
		return
	}
	target, ok := h.pathAgentID(w, r)
	if !ok {
		return
	}

	level, err := h.service.GetCapabilityLevel(ctx, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := &CapabilityResponse{
		AgentID: target.String(),
		Level:   level.String(),
	}
	if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
		has, err := h.service.HasRoleCapability(ctx, target, domain.RoleName(role))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		resp.HasRole = &has
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
