package ratelimit

import (
	"net/http"
	"strings"
)

// Tier groups API routes that draw from the same per-client bucket.
type Tier string

const (
	// TierGeneration covers generate and regenerate, which both run the model pipeline
	TierGeneration Tier = "generation"
	// TierStatus covers status polling and the status stream
	TierStatus Tier = "status"
	// TierRead covers history and session lookups
	TierRead Tier = "read"
)

// Classify maps a request to its tier. Requests outside the API tiers, such as
// /health or CORS preflights, are not limited and report ok=false.
func Classify(method, path string) (tier Tier, ok bool) {
	switch method {
	case http.MethodPost:
		if path == "/api/generate" || path == "/api/regenerate" {
			return TierGeneration, true
		}
	case http.MethodGet:
		switch {
		case path == "/api/status" || path == "/api/status/stream":
			return TierStatus, true
		case path == "/api/history" || strings.HasPrefix(path, "/api/sessions/"):
			return TierRead, true
		}
	}
	return "", false
}
