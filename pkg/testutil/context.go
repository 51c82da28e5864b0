package testutil

import (
	"net/http"

	"github.com/TiberiusB/Nondominium/pkg/domain"
	"github.com/TiberiusB/Nondominium/pkg/requestcontext"
)

// WithAgent stamps the request context with an authenticated agent, the
// way the auth middleware would for a valid token.
func WithAgent(req *http.Request, agentID domain.AgentID) *http.Request {
	return req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
}

// WithRequestID stamps the request context with a request ID.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
