// Package metrics exposes the league engine's Prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "poker_league"

// Metrics groups the collectors; a nil *Metrics is valid and records nothing.
type Metrics struct {
	registrations   *prometheus.CounterVec
	cancellations   *prometheus.CounterVec
	penalties       *prometheus.CounterVec
	penaltyPoints   *prometheus.CounterVec
	resultsRecorded prometheus.Counter
	rebuildDuration prometheus.Histogram
	sweeperRuns     prometheus.Counter
	sweeperStarted  prometheus.Counter
	sweeperFailures prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Registration cancellations, split by whether a penalty was applied.",
		}, []string{"penalized"}),
		penalties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalties_total",
			Help:      "Penalties recorded by reason.",
		}, []string{"reason"}),
		penaltyPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalty_points_total",
			Help:      "Points deducted by penalties, by reason.",
		}, []string{"reason"}),
		resultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Games whose results were recorded.",
		}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_rebuild_seconds",
			Help:      "Duration of full standings rebuilds.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweeperRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_runs_total",
			Help:      "Lifecycle sweeper passes.",
		}),
		sweeperStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_games_started_total",
			Help:      "Games moved from upcoming to in_progress by the sweeper.",
		}),
		sweeperFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_failures_total",
			Help:      "Per-game sweeper failures.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		m.registrations, m.cancellations, m.penalties, m.penaltyPoints,
		m.resultsRecorded, m.rebuildDuration,
		m.sweeperRuns, m.sweeperStarted, m.sweeperFailures,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Cancellation(penalized bool) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(strconv.FormatBool(penalized)).Inc()
}

func (m *Metrics) Penalty(reason string, points int) {
	if m == nil {
		return
	}
	m.penalties.WithLabelValues(reason).Inc()
	m.penaltyPoints.WithLabelValues(reason).Add(float64(points))
}

func (m *Metrics) ResultsRecorded() {
	if m == nil {
		return
	}
	m.resultsRecorded.Inc()
}

func (m *Metrics) ObserveRebuild(d time.Duration) {
	if m == nil {
		return
	}
	m.rebuildDuration.Observe(d.Seconds())
}

func (m *Metrics) SweeperRun(started, failed int) {
	if m == nil {
		return
	}
	m.sweeperRuns.Inc()
	m.sweeperStarted.Add(float64(started))
	m.sweeperFailures.Add(float64(failed))
}

func (m *Metrics) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
