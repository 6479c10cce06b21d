package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const datalogSubsystem = "datalog"

// DataLogSource provides the counters of the data logger
type DataLogSource interface {
	Written() uint64
	Dropped() uint64
	Rotations() uint64
}

type DataLogCollector struct {
	source DataLogSource

	written   *prometheus.Desc
	dropped   *prometheus.Desc
	rotations *prometheus.Desc
}

func NewDataLogCollector(source DataLogSource) *DataLogCollector {
	return &DataLogCollector{
		source: source,
		written: prometheus.NewDesc(prometheus.BuildFQName(namespace, datalogSubsystem, "written_total"),
			"Number of entries written to the data log",
			nil, nil,
		),
		dropped: prometheus.NewDesc(prometheus.BuildFQName(namespace, datalogSubsystem, "dropped_total"),
			"Number of entries that could not be written to the data log",
			nil, nil,
		),
		rotations: prometheus.NewDesc(prometheus.BuildFQName(namespace, datalogSubsystem, "rotations_total"),
			"Number of rotations of the data log",
			nil, nil,
		),
	}
}

func (collector *DataLogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.written
	ch <- collector.dropped
	ch <- collector.rotations
}

// Collect implements required collect function for all prometheus collectors
func (collector *DataLogCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(collector.written, prometheus.CounterValue, float64(collector.source.Written()))
	ch <- prometheus.MustNewConstMetric(collector.dropped, prometheus.CounterValue, float64(collector.source.Dropped()))
	ch <- prometheus.MustNewConstMetric(collector.rotations, prometheus.CounterValue, float64(collector.source.Rotations()))
}
