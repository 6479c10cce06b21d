package statistics

import (
	"github.com/markusressel/vent2go/internal/alarm"
	"github.com/prometheus/client_golang/prometheus"
)

const alarmSubsystem = "alarm"

type AlarmCollector struct {
	source Source

	active            *prometheus.Desc
	highPressureLimit *prometheus.Desc
}

func NewAlarmCollector(source Source) *AlarmCollector {
	return &AlarmCollector{
		source: source,
		active: prometheus.NewDesc(prometheus.BuildFQName(namespace, alarmSubsystem, "active"),
			"1 if an alarm of the given type is active, 0 otherwise",
			[]string{"type", "severity"}, nil,
		),
		highPressureLimit: prometheus.NewDesc(prometheus.BuildFQName(namespace, alarmSubsystem, "high_pressure_limit"),
			"Current high airway pressure alarm limit in cmH2O",
			nil, nil,
		),
	}
}

func (collector *AlarmCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.active
	ch <- collector.highPressureLimit
}

// Collect implements required collect function for all prometheus collectors
func (collector *AlarmCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.source.Statistics()

	active := map[alarm.Type]bool{}
	if stats.Alarms != nil {
		if stats.Alarms.HighPressure != nil {
			active[alarm.HighPressure] = true
		}
		for _, technical := range stats.Alarms.Technical {
			active[technical.Type] = true
		}
	}

	for _, rule := range alarm.DefaultRules.Sorted() {
		ch <- prometheus.MustNewConstMetric(collector.active, prometheus.GaugeValue,
			boolToFloat(active[rule.Type]), string(rule.Type), string(rule.Severity))
	}
	ch <- prometheus.MustNewConstMetric(collector.highPressureLimit, prometheus.GaugeValue, stats.HighPressureLimit)
}
