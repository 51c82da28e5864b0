// Package models holds the rate limiting domain types.
package models

import "time"

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// ExceededResponse is the HTTP body returned with 429.
type ExceededResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	RetryAfter  int    `json:"retry_after_seconds"`
}

// AgentKey builds the bucket key for an authenticated writer.
func AgentKey(agentID string) string {
	return "agent:" + agentID
}

// IPKey builds the bucket key for an unauthenticated client.
func IPKey(ip string) string {
	return "ip:" + ip
}
