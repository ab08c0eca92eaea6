package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshAttempts counts silent token refreshes by outcome
	// ("success" or "failure").
	RefreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forge_gateway",
		Name:      "token_refresh_attempts_total",
		Help:      "Silent access-token refresh attempts by outcome.",
	}, []string{"outcome"})

	// Redirects counts route-protection redirects by reason
	// ("unauthenticated" or "auth_route_bounce").
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forge_gateway",
		Name:      "redirects_total",
		Help:      "Route-protection redirects by reason.",
	}, []string{"reason"})

	// RevocationHits counts requests dropped by the revocation denylist.
	RevocationHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forge_gateway",
		Name:      "revocation_hits_total",
		Help:      "Requests whose access token was found on the denylist.",
	})

	// GateErrors counts unexpected failures recovered by the gate's
	// fail-open handler.
	GateErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forge_gateway",
		Name:      "gate_errors_total",
		Help:      "Unexpected gate failures handled by failing open.",
	})
)
