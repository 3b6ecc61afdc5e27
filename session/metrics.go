package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_gate_session_checks_total",
		Help: "Primary session verification outcomes.",
	}, []string{"outcome"})

	refreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_gate_token_refresh_total",
		Help: "Access token refresh attempts by result.",
	}, []string{"result"})

	staleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_gate_stale_check_responses_total",
		Help: "Check responses dropped because their token was superseded.",
	})
)
