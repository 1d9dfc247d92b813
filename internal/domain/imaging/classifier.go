package imaging

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/platform/eventlog"
)

// Classifier scores an imaging study. Implementations are external
// collaborators from the pipeline's point of view; a learned model would
// satisfy the same interface.
type Classifier interface {
	Predict(ctx context.Context, xrayRef, notes string) (*Result, error)
}

// RuleClassifier is a deterministic keyword-based classifier. Condition
// probabilities are driven by the study filename and the patient notes;
// severity is derived from the pneumonia probability.
type RuleClassifier struct {
	events *eventlog.Log
	logger zerolog.Logger
}

func NewRuleClassifier(events *eventlog.Log, logger zerolog.Logger) *RuleClassifier {
	return &RuleClassifier{events: events, logger: logger}
}

func (rc *RuleClassifier) Predict(ctx context.Context, xrayRef, notes string) (*Result, error) {
	fname := strings.ToLower(filepath.Base(xrayRef))
	lowNotes := strings.ToLower(notes)

	probs := map[Condition]float64{
		ConditionPneumonia:    0.2,
		ConditionNormal:       0.6,
		ConditionCovidSuspect: 0.2,
	}

	switch {
	case strings.Contains(fname, "pneumonia") || strings.Contains(lowNotes, "fever") || strings.Contains(lowNotes, "cough"):
		probs = map[Condition]float64{ConditionPneumonia: 0.7, ConditionNormal: 0.2, ConditionCovidSuspect: 0.1}
	case strings.Contains(fname, "covid") || strings.Contains(lowNotes, "breath"):
		probs = map[Condition]float64{ConditionPneumonia: 0.2, ConditionNormal: 0.2, ConditionCovidSuspect: 0.6}
	case strings.Contains(fname, "normal") || strings.Contains(lowNotes, "checkup"):
		probs = map[Condition]float64{ConditionPneumonia: 0.1, ConditionNormal: 0.8, ConditionCovidSuspect: 0.1}
	}

	result := &Result{
		ConditionProbs: probs,
		SeverityHint:   severityFor(probs[ConditionPneumonia]),
		Meta:           nowMeta(fname, "rule-based"),
	}

	if rc.events != nil {
		rc.events.Append("Imaging", "predicted conditions", map[string]interface{}{
			"condition_probs": probs,
			"severity_hint":   result.SeverityHint,
			"file":            fname,
		})
	}
	rc.logger.Debug().
		Str("file", fname).
		Str("severity", string(result.SeverityHint)).
		Msg("imaging prediction")

	return result, nil
}

// severityFor buckets the pneumonia probability: >0.75 severe, >0.5
// moderate, otherwise mild.
func severityFor(pneumonia float64) Severity {
	switch {
	case pneumonia > 0.75:
		return SeveritySevere
	case pneumonia > 0.5:
		return SeverityModerate
	default:
		return SeverityMild
	}
}
