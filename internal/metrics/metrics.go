// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API request outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
	OutcomeError   = "error"
	OutcomeStatus  = "status"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archie_api_requests_total",
			Help: "Upstream API requests by outcome",
		},
		[]string{"outcome"}, // ok, refused, error, status
	)

	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archie_commands_total",
			Help: "Slash commands handled",
		},
		[]string{"command"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archie_render_duration_seconds",
			Help:    "Time spent rendering images",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"kind"},
	)

	PopulationPlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archie_population_players",
			Help: "Players online at the last successful sample",
		},
	)

	PopulationPeakAllTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "archie_population_peak_alltime",
			Help: "All-time peak player count",
		},
	)
)

// RecordAPIRequest counts one upstream request.
func RecordAPIRequest(outcome string) {
	APIRequests.WithLabelValues(outcome).Inc()
}

// RecordCommand counts one handled command.
func RecordCommand(command string) {
	Commands.WithLabelValues(command).Inc()
}

// ObserveRender records how long a render of kind took since start.
func ObserveRender(kind string, start time.Time) {
	RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// SetPopulation publishes the latest population reading.
func SetPopulation(players, peakAllTime int) {
	PopulationPlayers.Set(float64(players))
	PopulationPeakAllTime.Set(float64(peakAllTime))
}
