// Package metrics exports probe and scheduler state to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/neosoob/clash-test/internal/domain"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clashtest_probes_total",
			Help: "Total number of connectivity probes by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	lastLatency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clashtest_last_latency_ms",
			Help: "Latency of the most recent completed probe in milliseconds",
		},
		[]string{"mode"},
	)

	schedulerRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clashtest_scheduler_running",
			Help: "Whether the background probe loop is active (1) or stopped (0)",
		},
	)
)

// Register installs the collectors on the default registry. Call once
// at startup.
func Register() {
	prometheus.MustRegister(
		probesTotal,
		lastLatency,
		schedulerRunning,
	)
}

// ObserveProbe records one probe outcome.
func ObserveProbe(mode domain.Mode, status domain.Status, latencyMS *float64) {
	probesTotal.WithLabelValues(string(mode), string(status)).Inc()
	if latencyMS != nil {
		lastLatency.WithLabelValues(string(mode)).Set(*latencyMS)
	}
}

// SetSchedulerRunning mirrors the scheduler state into the gauge.
func SetSchedulerRunning(running bool) {
	if running {
		schedulerRunning.Set(1)
	} else {
		schedulerRunning.Set(0)
	}
}
