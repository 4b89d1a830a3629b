package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Tier groups requests that share one sliding-window quota.
type Tier string

const (
	TierAuth  Tier = "AUTH"
	TierWrite Tier = "WRITE"
	TierRead  Tier = "READ"
	TierClick Tier = "CLICK"
)

type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultLimits are the per-client quotas for each tier.
var DefaultLimits = map[Tier]Limit{
	TierAuth:  {MaxRequests: 5, Window: time.Minute},
	TierWrite: {MaxRequests: 30, Window: time.Minute},
	TierRead:  {MaxRequests: 100, Window: time.Minute},
	TierClick: {MaxRequests: 60, Window: time.Minute},
}

// UnknownClient is the identifier shared by every request that carries no
// forwarding header.
const UnknownClient = "unknown-client"

// TierFor classifies a request. Path rules are checked before the method.
func TierFor(method, path string) Tier {
	switch {
	case strings.Contains(path, "/auth/register"), strings.Contains(path, "/auth/user"):
		return TierAuth
	case strings.Contains(path, "/click"):
		return TierClick
	}

	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return TierWrite
	default:
		return TierRead
	}
}

// ClientIdentifier picks the first X-Forwarded-For entry, then X-Real-IP.
func ClientIdentifier(h http.Header) string {
	if forwarded := h.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(h.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}
