package imaging

import "time"

// Condition is the closed set of conditions the classifier scores.
type Condition string

const (
	ConditionNormal       Condition = "normal"
	ConditionPneumonia    Condition = "pneumonia"
	ConditionCovidSuspect Condition = "covid_suspect"
)

// Conditions lists all known conditions in priority order. The order is the
// documented tie-break for equal probabilities: pneumonia before
// covid_suspect before normal, so clinically riskier conditions win ties.
var Conditions = []Condition{ConditionPneumonia, ConditionCovidSuspect, ConditionNormal}

// Valid reports whether c is a member of the closed condition set.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNormal, ConditionPneumonia, ConditionCovidSuspect:
		return true
	}
	return false
}

// Severity is the coarse clinical-risk bucket derived from imaging.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Escalates reports whether the severity alone warrants doctor escalation.
func (s Severity) Escalates() bool {
	return s == SeverityModerate || s == SeveritySevere
}

// Result is the classifier output for one study. Immutable.
type Result struct {
	ConditionProbs map[Condition]float64  `json:"condition_probs"`
	SeverityHint   Severity               `json:"severity_hint"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
}

// Prob returns the probability for c, zero when absent.
func (r *Result) Prob(c Condition) float64 {
	return r.ConditionProbs[c]
}

// TopCondition returns the condition with the highest probability. Ties are
// broken by the declared order in Conditions; conditions outside the closed
// set never win a tie against a known condition.
func (r *Result) TopCondition() Condition {
	var top Condition
	best := -1.0
	for _, c := range Conditions {
		if p, ok := r.ConditionProbs[c]; ok && p > best {
			top, best = c, p
		}
	}
	return top
}

func nowMeta(ref, model string) map[string]interface{} {
	return map[string]interface{}{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"file":  ref,
		"model": model,
	}
}
