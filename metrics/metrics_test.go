package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Registration("ok")
		m.Cancellation(true)
		m.Penalty("no_show", 100)
		m.ResultsRecorded()
		m.ObserveRebuild(time.Second)
		m.SweeperRun(1, 0)
		m.HTTPRequest("/games/{id}", "GET", 200, time.Millisecond)
	})
}

func TestCountersAccumulate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Registration("ok")
	m.Registration("ok")
	m.Registration("game_full")
	m.Penalty("late_cancellation", 100)
	m.Penalty("late_cancellation", 50)
	m.SweeperRun(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("game_full")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.penalties.WithLabelValues("late_cancellation")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.penaltyPoints.WithLabelValues("late_cancellation")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweeperStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweeperFailures))
}
