package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/TiberiusB/Nondominium/internal/directory/handler/mocks"
	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/service"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	dErrors "github.com/TiberiusB/Nondominium/pkg/domain-errors"
	"github.com/TiberiusB/Nondominium/pkg/testutil"
)

type DirectoryHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *DirectoryHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestDirectoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(DirectoryHandlerSuite))
}

func newTestHandler(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func authedRequest(method, target string, agentID domain.AgentID, body any) (*httptest.ResponseRecorder, *http.Request) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req = testutil.WithAgent(req, agentID)
	req = testutil.WithRequestID(req, "test-request")
	return httptest.NewRecorder(), req
}

func (s *DirectoryHandlerSuite) TestHandleCreateProfile() {
	router, mockService := newTestHandler(s.T())
	agent := domain.NewAgentID()

	mockService.EXPECT().CreateProfile(
		gomock.Any(),
		agent,
		models.PublicProfile{Owner: agent, Name: "Lynn", AvatarURL: "https://example.org/lynn.png"},
	).Return(models.Record{ID: "abc123", Kind: models.KindPublicProfile}, nil)

	w, req := authedRequest(http.MethodPost, "/directory/profile", agent, map[string]string{
		"name":       "Lynn",
		"avatar_url": "https://example.org/lynn.png",
	})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "abc123", resp["record_id"])
	assert.Equal(s.T(), string(models.KindPublicProfile), resp["kind"])
}

func (s *DirectoryHandlerSuite) TestHandleCreateProfile_Unauthenticated() {
	router, _ := newTestHandler(s.T())

	w, req := authedRequest(http.MethodPost, "/directory/profile", domain.AgentID{}, map[string]string{"name": "Lynn"})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *DirectoryHandlerSuite) TestHandleCreateProfile_EmptyName() {
	router, _ := newTestHandler(s.T())

	w, req := authedRequest(http.MethodPost, "/directory/profile", domain.NewAgentID(), map[string]string{"name": "   "})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "invalid_input", resp["error"])
}

func (s *DirectoryHandlerSuite) TestHandleStorePrivateData() {
	router, mockService := newTestHandler(s.T())
	agent := domain.NewAgentID()

	mockService.EXPECT().StorePrivateData(
		gomock.Any(),
		agent,
		models.PrivateProfile{Owner: agent, LegalName: "Lynn Foster", Email: "lynn@example.org", TimeZone: "America/Chicago"},
	).Return(models.Record{ID: "priv1", Kind: models.KindPrivateProfile}, nil)

	w, req := authedRequest(http.MethodPost, "/directory/profile/private", agent, map[string]string{
		"legal_name": "Lynn Foster",
		"email":      "lynn@example.org",
		"time_zone":  "America/Chicago",
	})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

func (s *DirectoryHandlerSuite) TestHandleAssignRole() {
	router, mockService := newTestHandler(s.T())
	issuer := domain.NewAgentID()
	assignee := domain.NewAgentID()

	mockService.EXPECT().AssignRole(
		gomock.Any(),
		issuer,
		models.RoleAssignment{Assignee: assignee, AssignedBy: issuer, RoleName: domain.RoleResourceSteward},
	).Return(models.Record{ID: "grant1", Kind: models.KindRoleAssignment}, nil)

	w, req := authedRequest(http.MethodPost, "/directory/roles", issuer, map[string]string{
		"assignee":  assignee.String(),
		"role_name": string(domain.RoleResourceSteward),
	})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

func (s *DirectoryHandlerSuite) TestHandleAssignRole_DenialMapsToForbidden() {
	router, mockService := newTestHandler(s.T())
	issuer := domain.NewAgentID()
	assignee := domain.NewAgentID()

	mockService.EXPECT().AssignRole(gomock.Any(), issuer, gomock.Any()).
		Return(models.Record{}, dErrors.New(dErrors.CodeNotAuthorized, "insufficient capability to assign role"))

	w, req := authedRequest(http.MethodPost, "/directory/roles", issuer, map[string]string{
		"assignee":  assignee.String(),
		"role_name": string(domain.RoleFounder),
	})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "not_authorized", resp["error"])
}

func (s *DirectoryHandlerSuite) TestHandleAssignRole_BadAssignee() {
	router, _ := newTestHandler(s.T())

	w, req := authedRequest(http.MethodPost, "/directory/roles", domain.NewAgentID(), map[string]string{
		"assignee":  "not-a-uuid",
		"role_name": string(domain.RoleFounder),
	})
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *DirectoryHandlerSuite) TestHandleGetMyProfile() {
	router, mockService := newTestHandler(s.T())
	agent := domain.NewAgentID()

	mockService.EXPECT().GetMyProfile(gomock.Any(), agent).Return(service.Profile{
		Public:  &models.PublicProfile{Owner: agent, Name: "Lynn"},
		Private: &models.PrivateProfile{Owner: agent, LegalName: "Lynn Foster", Email: "lynn@example.org"},
	}, nil)

	w, req := authedRequest(http.MethodGet, "/directory/me", agent, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "Lynn", resp["public"]["name"])
	assert.Equal(s.T(), "Lynn Foster", resp["private"]["legal_name"])
}

func (s *DirectoryHandlerSuite) TestHandleGetPersonProfile_OmitsAbsentHalves() {
	router, mockService := newTestHandler(s.T())
	caller := domain.NewAgentID()
	target := domain.NewAgentID()

	mockService.EXPECT().GetPersonProfile(gomock.Any(), caller, target).Return(service.Profile{
		Public: &models.PublicProfile{Owner: target, Name: "Bob"},
	}, nil)

	w, req := authedRequest(http.MethodGet, "/directory/persons/"+target.String(), caller, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(s.T(), resp, "public")
	assert.NotContains(s.T(), resp, "private")
}

func (s *DirectoryHandlerSuite) TestHandleGetAllPersons() {
	router, mockService := newTestHandler(s.T())
	caller := domain.NewAgentID()
	other := domain.NewAgentID()

	mockService.EXPECT().GetAllPersons(gomock.Any(), caller).Return([]models.PublicProfile{
		{Owner: caller, Name: "Lynn"},
		{Owner: other, Name: "Bob"},
	}, nil)

	w, req := authedRequest(http.MethodGet, "/directory/persons", caller, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp struct {
		Persons []map[string]any `json:"persons"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Persons, 2)
	assert.Equal(s.T(), "Lynn", resp.Persons[0]["name"])
}

func (s *DirectoryHandlerSuite) TestHandleGetPersonRoles() {
	router, mockService := newTestHandler(s.T())
	caller := domain.NewAgentID()
	target := domain.NewAgentID()

	mockService.EXPECT().GetPersonRoles(gomock.Any(), target).Return([]models.RoleAssignment{
		{Assignee: target, AssignedBy: caller, RoleName: domain.RoleResourceSteward},
	}, nil)

	w, req := authedRequest(http.MethodGet, "/directory/persons/"+target.String()+"/roles", caller, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp struct {
		AgentID string `json:"agent_id"`
		Roles   []struct {
			RoleName   string `json:"role_name"`
			AssignedBy string `json:"assigned_by"`
		} `json:"roles"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), target.String(), resp.AgentID)
	require.Len(s.T(), resp.Roles, 1)
	assert.Equal(s.T(), string(domain.RoleResourceSteward), resp.Roles[0].RoleName)
	assert.Equal(s.T(), caller.String(), resp.Roles[0].AssignedBy)
}

func (s *DirectoryHandlerSuite) TestHandleGetCapability() {
	router, mockService := newTestHandler(s.T())
	caller := domain.NewAgentID()
	target := domain.NewAgentID()

	mockService.EXPECT().GetCapabilityLevel(gomock.Any(), target).Return(domain.CapabilityCoordination, nil)

	w, req := authedRequest(http.MethodGet, "/directory/persons/"+target.String()+"/capability", caller, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "COORDINATION", resp["level"])
	assert.NotContains(s.T(), resp, "has_role")
}

func (s *DirectoryHandlerSuite) TestHandleGetCapability_WithRoleQuery() {
	router, mockService := newTestHandler(s.T())
	caller := domain.NewAgentID()
	target := domain.NewAgentID()

	mockService.EXPECT().GetCapabilityLevel(gomock.Any(), target).Return(domain.CapabilityStewardship, nil)
	mockService.EXPECT().HasRoleCapability(gomock.Any(), target, domain.RoleResourceSteward).Return(true, nil)

	w, req := authedRequest(http.MethodGet, "/directory/persons/"+target.String()+"/capability?role=RESOURCE_STEWARD", caller, nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "STEWARDSHIP", resp["level"])
	assert.Equal(s.T(), true, resp["has_role"])
}
