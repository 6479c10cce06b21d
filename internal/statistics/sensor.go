package statistics

import (
	"github.com/markusressel/vent2go/internal/values"
	"github.com/prometheus/client_golang/prometheus"
)

const sensorSubsystem = "sensor"

// exportedSensors are the measurements exported as gauges, labeled by name
var exportedSensors = []values.ValueName{
	values.PIP,
	values.PEEP,
	values.FiO2,
	values.Pressure,
	values.Vte,
	values.BreathsPerMinute,
	values.InspirationTimeSec,
	values.FlowOut,
}

type SensorCollector struct {
	source Source
	value  *prometheus.Desc
}

func NewSensorCollector(source Source) *SensorCollector {
	return &SensorCollector{
		source: source,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "value"),
			"Most recent measurement published by the control loop",
			[]string{"name"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	sensors := collector.source.Statistics().Sensors
	for _, name := range exportedSensors {
		value, ok := sensors.Get(name)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, orNaN(value), string(name))
	}
}
