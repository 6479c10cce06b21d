package alarm

import (
	"fmt"
	"sort"
)

// Rule is the static configuration of a single alarm type
type Rule struct {
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
	Limit       float64  `json:"limit"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
}

type Rules map[Type]Rule

var DefaultRules = Rules{
	HighPressure: {
		Type:        HighPressure,
		Severity:    SeverityHigh,
		Limit:       40,
		Unit:        "cmH2O",
		Description: "Airway pressure above the limit for longer than the cough tolerance",
	},
	SensorsStuck: {
		Type:        SensorsStuck,
		Severity:    SeverityTechnical,
		Description: "A sensor reported the exact same value for too long",
	},
	BadSensorReadings: {
		Type:        BadSensorReadings,
		Severity:    SeverityTechnical,
		Description: "A sensor reported a physically implausible value",
	},
	MissedHeartbeat: {
		Type:        MissedHeartbeat,
		Severity:    SeverityTechnical,
		Description: "No contact with the coordinator within the heartbeat timeout",
	},
}

// WithLimits returns a copy of the rules, with the limits of the given alarm types replaced
func (r Rules) WithLimits(limits map[string]float64) (Rules, error) {
	result := Rules{}
	for key, rule := range r {
		result[key] = rule
	}
	for name, limit := range limits {
		rule, ok := result[Type(name)]
		if !ok {
			return nil, fmt.Errorf("unknown alarm type: %s", name)
		}
		rule.Limit = limit
		result[rule.Type] = rule
	}
	return result, nil
}

// Sorted returns all rules, ordered by type
func (r Rules) Sorted() []Rule {
	result := make([]Rule, 0, len(r))
	for _, rule := range r {
		result = append(result, rule)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})
	return result
}
