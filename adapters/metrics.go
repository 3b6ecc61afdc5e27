package adapters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var patchMisses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_gate_patch_misses_total",
	Help: "Patches skipped because their target id was not in the registry.",
}, []string{"kind"})
