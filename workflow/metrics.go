package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_routes_total",
		Help: "Queries routed, by intent and by whether the model or the keyword table decided.",
	}, []string{"intent", "source"})

	guardRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_guard_rejections_total",
		Help: "Queries rejected by an input precondition before any external call.",
	}, []string{"intent"})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_actions_total",
		Help: "Irreversible actions attempted, by kind and outcome.",
	}, []string{"kind", "outcome"})

	compoundRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_compound_runs_total",
		Help: "Compound runs by terminal state.",
	}, []string{"state"})
)
