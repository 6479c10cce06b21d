package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const loopSubsystem = "loop"

type LoopCollector struct {
	source Source

	running        *prometheus.Desc
	iterations     *prometheus.Desc
	breaths        *prometheus.Desc
	stalls         *prometheus.Desc
	abandonedRuns  *prometheus.Desc
	forcedReleases *prometheus.Desc
	pressureSlope  *prometheus.Desc
}

func NewLoopCollector(source Source) *LoopCollector {
	return &LoopCollector{
		source: source,
		running: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "running"),
			"1 if the control loop is supposed to run, 0 otherwise",
			nil, nil,
		),
		iterations: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "iterations_total"),
			"Number of iterations of the control loop",
			nil, nil,
		),
		breaths: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "breaths_total"),
			"Number of breaths started by the control loop",
			nil, nil,
		),
		stalls: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "stalls_total"),
			"Number of iterations that took longer than a quarter breath",
			nil, nil,
		),
		abandonedRuns: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "abandoned_runs_total"),
			"Number of control loop runs that did not exit in time after an interrupt",
			nil, nil,
		),
		forcedReleases: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "forced_releases_total"),
			"Number of forced pressure releases due to sustained high pressure",
			nil, nil,
		),
		pressureSlope: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "pressure_slope"),
			"Moving average of the pressure change within the current breath, in cmH2O/s",
			nil, nil,
		),
	}
}

func (collector *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.running
	ch <- collector.iterations
	ch <- collector.breaths
	ch <- collector.stalls
	ch <- collector.abandonedRuns
	ch <- collector.forcedReleases
	ch <- collector.pressureSlope
}

// Collect implements required collect function for all prometheus collectors
func (collector *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.source.Statistics()
	ch <- prometheus.MustNewConstMetric(collector.running, prometheus.GaugeValue, boolToFloat(stats.Running))
	ch <- prometheus.MustNewConstMetric(collector.iterations, prometheus.CounterValue, float64(stats.LoopCounter))
	ch <- prometheus.MustNewConstMetric(collector.breaths, prometheus.CounterValue, float64(stats.BreathCount))
	ch <- prometheus.MustNewConstMetric(collector.stalls, prometheus.CounterValue, float64(stats.Stalls))
	ch <- prometheus.MustNewConstMetric(collector.abandonedRuns, prometheus.CounterValue, float64(stats.AbandonedRuns))
	ch <- prometheus.MustNewConstMetric(collector.forcedReleases, prometheus.CounterValue, float64(stats.ForcedReleases))
	ch <- prometheus.MustNewConstMetric(collector.pressureSlope, prometheus.GaugeValue, orNaN(stats.PressureSlope))
}
