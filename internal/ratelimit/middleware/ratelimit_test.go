package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TiberiusB/Nondominium/internal/ratelimit/store/bucket"
	"github.com/TiberiusB/Nondominium/pkg/domain"
	"github.com/TiberiusB/Nondominium/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doWrite(handler http.Handler, agentID domain.AgentID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/directory/profile", nil)
	if !agentID.IsZero() {
		req = req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestLimitWrites_EnforcesPerAgentBudget(t *testing.T) {
	mw := New(bucket.NewInMemoryBucketStore(), discardLogger(), WithLimit(2, time.Minute))
	handler := mw.LimitWrites(okHandler())
	agent := domain.NewAgentID()

	assert.Equal(t, http.StatusOK, doWrite(handler, agent).Code)
	assert.Equal(t, http.StatusOK, doWrite(handler, agent).Code)

	w := doWrite(handler, agent)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestLimitWrites_AgentsHaveSeparateBudgets(t *testing.T) {
	mw := New(bucket.NewInMemoryBucketStore(), discardLogger(), WithLimit(1, time.Minute))
	handler := mw.LimitWrites(okHandler())

	assert.Equal(t, http.StatusOK, doWrite(handler, domain.NewAgentID()).Code)
	assert.Equal(t, http.StatusOK, doWrite(handler, domain.NewAgentID()).Code)
}

func TestLimitWrites_Disabled(t *testing.T) {
	mw := New(bucket.NewInMemoryBucketStore(), discardLogger(), WithLimit(1, time.Minute), WithDisabled(true))
	handler := mw.LimitWrites(okHandler())
	agent := domain.NewAgentID()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doWrite(handler, agent).Code)
	}
}

func TestLimitWrites_SetsBudgetHeaders(t *testing.T) {
	mw := New(bucket.NewInMemoryBucketStore(), discardLogger(), WithLimit(10, time.Minute))
	handler := mw.LimitWrites(okHandler())

	w := doWrite(handler, domain.NewAgentID())
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
}
