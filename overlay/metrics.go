package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var overlayPasses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "portal_gate_overlay_passes_total",
	Help: "Completed access overlay passes over the registries.",
})
