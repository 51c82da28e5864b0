package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TiberiusB/Nondominium/internal/directory/handler"
	"github.com/TiberiusB/Nondominium/internal/directory/models"
	"github.com/TiberiusB/Nondominium/internal/directory/roles"
	"github.com/TiberiusB/Nondominium/internal/directory/service"
	"github.com/TiberiusB/Nondominium/internal/directory/store"
	jwttoken "github.com/TiberiusB/Nondominium/internal/jwt_token"
	"github.com/TiberiusB/Nondominium/internal/platform/middleware"
	"github.com/TiberiusB/Nondominium/internal/replication"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	"github.com/TiberiusB/Nondominium/pkg/testutil"
)

const signingKey = "integration-test-signing-key"

// replica is one directory node: its own store, index, service, and
// HTTP surface, joined to the others through the in-process hub.
type replica struct {
	store  *store.InMemoryRecordStore
	router http.Handler
	jwt    *jwttoken.JWTService
}

func newReplica(t *testing.T, hub *replication.Hub, runCtx context.Context) *replica {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	records := store.NewInMemory()
	index := roles.NewIndex(records)
	svc := service.New(records, index,
		service.WithLogger(logger),
		service.WithOracle(service.NewCapabilityOracle(index)),
	)

	repl := hub.Attach(records, logger, nil)
	go func() { _ = repl.Run(runCtx) }()

	jwtService := jwttoken.NewJWTService(signingKey, "nondominium-directory", "directory")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequireAuth(jwtService, logger))
	handler.New(svc, logger).Register(r)

	return &replica{store: records, router: r, jwt: jwtService}
}

func (r *replica) do(t *testing.T, agent domain.AgentID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	token, err := r.jwt.GenerateAccessToken(agent, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return testutil.DoRequest(r.router, req)
}

func converge(t *testing.T, replicas ...*replica) {
	t.Helper()
	stores := make([]store.RecordStore, len(replicas))
	for i, r := range replicas {
		stores[i] = r.store
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, replication.Converged(ctx, stores...))
}

// TestTwoAgentCommunity walks a two-member community across two
// replicas: a founder bootstraps, a second member joins from another
// node, private data stays with its owner, and a granted role resolves
// to the same capability on both replicas.
func TestTwoAgentCommunity(t *testing.T) {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := replication.NewHub()
	replicaL := newReplica(t, hub, runCtx)
	replicaB := newReplica(t, hub, runCtx)

	lynn := domain.NewAgentID()
	bob := domain.NewAgentID()

	// Lynn bootstraps the community on her replica.
	rr := replicaL.do(t, lynn, http.MethodPost, "/directory/profile", map[string]string{"name": "Lynn"})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = replicaL.do(t, lynn, http.MethodPost, "/directory/profile/private", map[string]string{
		"legal_name": "Lynn Foster",
		"email":      "lynn@example.org",
		"phone":      "+1 555 0100",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = replicaL.do(t, lynn, http.MethodPost, "/directory/roles", map[string]string{
		"assignee":  lynn.String(),
		"role_name": string(domain.RoleFounder),
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	// Bob joins from the other replica.
	rr = replicaB.do(t, bob, http.MethodPost, "/directory/profile", map[string]string{"name": "Bob"})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	converge(t, replicaL, replicaB)

	t.Run("members see each other's public profiles", func(t *testing.T) {
		rr := replicaB.do(t, bob, http.MethodGet, "/directory/persons", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var list struct {
			Persons []struct {
				Name string `json:"name"`
			} `json:"persons"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		names := []string{list.Persons[0].Name, list.Persons[1].Name}
		assert.ElementsMatch(t, []string{"Lynn", "Bob"}, names)
	})

	t.Run("private data never crosses owners, even across replicas", func(t *testing.T) {
		rr := replicaB.do(t, bob, http.MethodGet, "/directory/persons/"+lynn.String(), nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var profile map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
		assert.Contains(t, profile, "public")
		assert.NotContains(t, profile, "private")

		// The owner still reads her own private half on her replica.
		rr = replicaL.do(t, lynn, http.MethodGet, "/directory/me", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var me map[string]map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
		assert.Equal(t, "Lynn Foster", me["private"]["legal_name"])
	})

	t.Run("founder grants stewardship across replicas", func(t *testing.T) {
		rr := replicaL.do(t, lynn, http.MethodPost, "/directory/roles", map[string]string{
			"assignee":    bob.String(),
			"role_name":   string(domain.RoleResourceSteward),
			"description": "community workshop steward",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		converge(t, replicaL, replicaB)

		// Both replicas resolve the same capability for Bob.
		for _, rep := range []*replica{replicaL, replicaB} {
			rr := rep.do(t, bob, http.MethodGet, "/directory/persons/"+bob.String()+"/capability?role=RESOURCE_STEWARD", nil)
			testutil.AssertStatus(t, rr, http.StatusOK)
			var capResp struct {
				Level   string `json:"level"`
				HasRole *bool  `json:"has_role"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &capResp))
			assert.Equal(t, "STEWARDSHIP", capResp.Level)
			require.NotNil(t, capResp.HasRole)
			assert.True(t, *capResp.HasRole)
		}

		// The assignment records who granted it.
		rr = replicaB.do(t, bob, http.MethodGet, "/directory/persons/"+bob.String()+"/roles", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var rolesResp struct {
			Roles []struct {
				RoleName   string `json:"role_name"`
				AssignedBy string `json:"assigned_by"`
			} `json:"roles"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rolesResp))
		require.Len(t, rolesResp.Roles, 1)
		assert.Equal(t, string(domain.RoleResourceSteward), rolesResp.Roles[0].RoleName)
		assert.Equal(t, lynn.String(), rolesResp.Roles[0].AssignedBy)
	})

	t.Run("steward cannot grant roles above his capability", func(t *testing.T) {
		rr := replicaB.do(t, bob, http.MethodPost, "/directory/roles", map[string]string{
			"assignee":  bob.String(),
			"role_name": string(domain.RoleResourceCoordinator),
		})
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		testutil.AssertErrorCode(t, rr, "not_authorized")
	})

	t.Run("unrecognized role is listed but grants nothing", func(t *testing.T) {
		rr := replicaL.do(t, lynn, http.MethodPost, "/directory/roles", map[string]string{
			"assignee":  bob.String(),
			"role_name": "GARDEN_KEEPER",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		converge(t, replicaL, replicaB)

		rr = replicaB.do(t, bob, http.MethodGet, "/directory/persons/"+bob.String()+"/roles", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var rolesResp struct {
			Roles []struct {
				RoleName string `json:"role_name"`
			} `json:"roles"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rolesResp))
		var names []string
		for _, role := range rolesResp.Roles {
			names = append(names, role.RoleName)
		}
		assert.Contains(t, names, "GARDEN_KEEPER")

		rr = replicaB.do(t, bob, http.MethodGet, "/directory/persons/"+bob.String()+"/capability", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var capResp struct {
			Level string `json:"level"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &capResp))
		assert.Equal(t, "STEWARDSHIP", capResp.Level, "unknown role names add no capability")
	})
}

// TestProfileUpsertAcrossReplicas checks that a superseding profile
// write on one replica becomes the visible profile everywhere while the
// older record stays in the log.
func TestProfileUpsertAcrossReplicas(t *testing.T) {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := replication.NewHub()
	replicaA := newReplica(t, hub, runCtx)
	replicaB := newReplica(t, hub, runCtx)

	alice := domain.NewAgentID()

	rr := replicaA.do(t, alice, http.MethodPost, "/directory/profile", map[string]string{"name": "Alice"})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	converge(t, replicaA, replicaB)

	rr = replicaA.do(t, alice, http.MethodPost, "/directory/profile", map[string]string{"name": "Alice the Second"})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	converge(t, replicaA, replicaB)

	rr = replicaB.do(t, domain.NewAgentID(), http.MethodGet, "/directory/persons/"+alice.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var profile struct {
		Public struct {
			Name string `json:"name"`
		} `json:"public"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "Alice the Second", profile.Public.Name)

	// Both records remain in the log; the read path picks the latest.
	ctx := context.Background()
	records, err := replicaB.store.GetForOwner(ctx, models.KindPublicProfile, alice)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
