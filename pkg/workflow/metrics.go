package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	runsTotal    *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	m := &engineMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splunk_mcp_workflow_runs_total",
			Help: "Number of workflow runs completed, by terminal status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splunk_mcp_workflow_task_duration_seconds",
			Help:    "Duration of individual workflow task executions, by tool and terminal status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if reg != nil {
		_ = reg.Register(m.runsTotal)
		_ = reg.Register(m.taskDuration)
	}
	return m
}

func (m *engineMetrics) observeRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

func (m *engineMetrics) observeTask(tool, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.taskDuration.WithLabelValues(tool, status).Observe(d.Seconds())
}
