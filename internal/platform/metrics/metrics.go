// Package metrics provides Prometheus instrumentation for homeflix.
//
// Standard Go runtime and process metrics are exposed automatically by
// prometheus/client_golang. Business metrics registered here:
//
//	homeflix_store_pushes_total    — counter: snapshot pushes by collection
//	homeflix_recomputes_total      — counter: derived-view recomputations
//	homeflix_auth_events_total     — counter: auth events by type and result
//	homeflix_sessions_active       — gauge: currently logged-in sessions
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StorePushes counts full-snapshot deliveries from the realtime store.
var StorePushes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "homeflix_store_pushes_total",
	Help: "Snapshot pushes received from the realtime store, by collection.",
}, []string{"collection"})

// Recomputes counts derived-view pipeline runs (grouping, filter, history).
var Recomputes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "homeflix_recomputes_total",
	Help: "Derived-view recomputations triggered by pushes or commands.",
})

// AuthEvents counts login/logout/bootstrap events.
var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "homeflix_auth_events_total",
	Help: "Auth events by type and result.",
}, []string{"event", "result"})

// ActiveSessions is the number of currently logged-in sessions.
var ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "homeflix_sessions_active",
	Help: "Currently logged-in sessions.",
})

// Handler returns the Prometheus scrape endpoint for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
