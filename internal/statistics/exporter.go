package statistics

import (
	"math"

	"github.com/markusressel/vent2go/internal/control"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vent2go"
)

// Source provides the state of the control module
type Source interface {
	Statistics() control.Statistics
}

func Register(collector prometheus.Collector) {
	prometheus.MustRegister(collector)
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

// undefined measurements are exported as NaN, which prometheus supports
func orNaN(value float64) float64 {
	if math.IsInf(value, 0) {
		return math.NaN()
	}
	return value
}
