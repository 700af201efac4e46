// Package metrics 计算任务的 prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry 独立的注册表，避免和默认注册表里的进程指标混在一起
var Registry = prometheus.NewRegistry()

var (
	runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turbojet",
		Name:      "runs_total",
		Help:      "Cycle runs by mode and result.",
	}, []string{"mode", "result"})

	duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "turbojet",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a cycle run.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"mode"})

	iterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "turbojet",
		Name:      "solver_iterations",
		Help:      "Newton iterations of converged off-design solves.",
		Buckets:   prometheus.LinearBuckets(0, 2, 16),
	})

	lastThrust = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "turbojet",
		Name:      "last_net_thrust_lbf",
		Help:      "Net thrust of the most recent successful run.",
	}, []string{"mode"})

	activeSweeps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "turbojet",
		Name:      "active_sweeps",
		Help:      "Throttle sweeps currently running.",
	})
)

func init() {
	Registry.MustRegister(runs, duration, iterations, lastThrust, activeSweeps)
}

// 结果标签
const (
	ResultOK           = "ok"
	ResultNotConverged = "not_converged"
	ResultInvalid      = "invalid"
	ResultError        = "error"
)

// ObserveRun 记录一次计算
func ObserveRun(mode, result string, start time.Time) {
	runs.WithLabelValues(mode, result).Inc()
	duration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func ObserveIterations(n int) {
	iterations.Observe(float64(n))
}

func SetThrust(mode string, lbf float64) {
	lastThrust.WithLabelValues(mode).Set(lbf)
}

// SweepStarted 返回结束时调用的函数
func SweepStarted() func() {
	activeSweeps.Inc()
	return activeSweeps.Dec
}
