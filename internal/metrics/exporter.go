// Package metrics adapts scheduler statistics to Prometheus collectors.
// The exporter is a snapshot collector: every scrape reads the current
// statistics rather than tracking increments, which matches the
// scheduler's derived-view statistics model.
package metrics

import (
	"errors"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/vk/stepwave/internal/scheduler"
)

// Source provides the statistics snapshot the exporter publishes.
type Source interface {
	Statistics() scheduler.Statistics
}

// Exporter implements prometheus.Collector over a statistics Source.
type Exporter struct {
	source Source

	stepsTotal      *prom.Desc
	stepsSucceeded  *prom.Desc
	stepsFailed     *prom.Desc
	successRate     *prom.Desc
	runDuration     *prom.Desc
	averageDuration *prom.Desc
	runsTotal       *prom.Desc
	resourceLocks   *prom.Desc
}

// NewExporter creates collectors under the given namespace. An empty
// namespace defaults to "stepwave".
func NewExporter(namespace string, source Source) *Exporter {
	if namespace == "" {
		namespace = "stepwave"
	}
	return &Exporter{
		source: source,
		stepsTotal: prom.NewDesc(
			prom.BuildFQName(namespace, "", "steps_total"),
			"Total number of step executions since the last reset.", nil, nil),
		stepsSucceeded: prom.NewDesc(
			prom.BuildFQName(namespace, "", "steps_succeeded_total"),
			"Number of completed step executions since the last reset.", nil, nil),
		stepsFailed: prom.NewDesc(
			prom.BuildFQName(namespace, "", "steps_failed_total"),
			"Number of failed step executions since the last reset.", nil, nil),
		successRate: prom.NewDesc(
			prom.BuildFQName(namespace, "", "success_rate"),
			"Succeeded over total step executions.", nil, nil),
		runDuration: prom.NewDesc(
			prom.BuildFQName(namespace, "", "step_duration_seconds_total"),
			"Summed step execution duration in seconds.", nil, nil),
		averageDuration: prom.NewDesc(
			prom.BuildFQName(namespace, "", "step_duration_seconds_avg"),
			"Average step execution duration in seconds.", nil, nil),
		runsTotal: prom.NewDesc(
			prom.BuildFQName(namespace, "", "runs_total"),
			"Number of Execute calls since the last reset.", nil, nil),
		resourceLocks: prom.NewDesc(
			prom.BuildFQName(namespace, "", "resource_locks"),
			"Distinct resource locks in the registry.", []string{"kind"}, nil),
	}
}

// Register attaches the exporter to the given registerer. Double
// registration of an identical collector is tolerated, matching how
// repeated app instances share the default registerer in tests.
func (e *Exporter) Register(reg prom.Registerer) error {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if err := reg.Register(e); err != nil {
		var are prom.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prom.Desc) {
	ch <- e.stepsTotal
	ch <- e.stepsSucceeded
	ch <- e.stepsFailed
	ch <- e.successRate
	ch <- e.runDuration
	ch <- e.averageDuration
	ch <- e.runsTotal
	ch <- e.resourceLocks
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prom.Metric) {
	stats := e.source.Statistics()

	ch <- prom.MustNewConstMetric(e.stepsTotal, prom.GaugeValue, float64(stats.Total))
	ch <- prom.MustNewConstMetric(e.stepsSucceeded, prom.GaugeValue, float64(stats.Succeeded))
	ch <- prom.MustNewConstMetric(e.stepsFailed, prom.GaugeValue, float64(stats.Failed))
	ch <- prom.MustNewConstMetric(e.successRate, prom.GaugeValue, stats.SuccessRate)
	ch <- prom.MustNewConstMetric(e.runDuration, prom.GaugeValue, stats.TotalDuration.Seconds())
	ch <- prom.MustNewConstMetric(e.averageDuration, prom.GaugeValue, stats.AverageDuration.Seconds())
	ch <- prom.MustNewConstMetric(e.runsTotal, prom.GaugeValue, float64(stats.Runs))
	ch <- prom.MustNewConstMetric(e.resourceLocks, prom.GaugeValue, float64(stats.Locks.Files), "file")
	ch <- prom.MustNewConstMetric(e.resourceLocks, prom.GaugeValue, float64(stats.Locks.Logical), "logical")
}
