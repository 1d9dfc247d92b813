package imaging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestRuleClassifier_PneumoniaKeywords(t *testing.T) {
	rc := NewRuleClassifier(nil, zerolog.Nop())

	cases := []struct {
		name     string
		xrayRef  string
		notes    string
		wantTop  Condition
		wantProb float64
		wantSev  Severity
	}{
		{"filename pneumonia", "scans/pneumonia_034.png", "", ConditionPneumonia, 0.7, SeverityModerate},
		{"notes fever", "scans/xr1.png", "Patient reports fever for 3 days", ConditionPneumonia, 0.7, SeverityModerate},
		{"notes cough", "scans/xr1.png", "persistent COUGH", ConditionPneumonia, 0.7, SeverityModerate},
		{"covid filename", "scans/covid_11.png", "", ConditionCovidSuspect, 0.6, SeverityMild},
		{"breath in notes", "scans/xr1.png", "shortness of breath", ConditionCovidSuspect, 0.6, SeverityMild},
		{"normal checkup", "scans/xr2.png", "routine checkup", ConditionNormal, 0.8, SeverityMild},
		{"no signal", "scans/xr3.png", "", ConditionNormal, 0.6, SeverityMild},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := rc.Predict(context.Background(), tc.xrayRef, tc.notes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := res.TopCondition(); got != tc.wantTop {
				t.Errorf("top condition: expected %s, got %s", tc.wantTop, got)
			}
			if p := res.Prob(tc.wantTop); p != tc.wantProb {
				t.Errorf("prob: expected %v, got %v", tc.wantProb, p)
			}
			if res.SeverityHint != tc.wantSev {
				t.Errorf("severity: expected %s, got %s", tc.wantSev, res.SeverityHint)
			}
		})
	}
}

func TestSeverityFor_Thresholds(t *testing.T) {
	if severityFor(0.76) != SeveritySevere {
		t.Error("expected severe above 0.75")
	}
	if severityFor(0.75) != SeverityModerate {
		t.Error("expected moderate at exactly 0.75")
	}
	if severityFor(0.51) != SeverityModerate {
		t.Error("expected moderate above 0.5")
	}
	if severityFor(0.5) != SeverityMild {
		t.Error("expected mild at exactly 0.5")
	}
}

func TestTopCondition_TieBreak(t *testing.T) {
	// Equal probabilities resolve by declared priority: pneumonia first.
	res := &Result{ConditionProbs: map[Condition]float64{
		ConditionNormal:       0.4,
		ConditionCovidSuspect: 0.4,
		ConditionPneumonia:    0.4,
	}}
	if got := res.TopCondition(); got != ConditionPneumonia {
		t.Errorf("expected pneumonia to win the tie, got %s", got)
	}

	res = &Result{ConditionProbs: map[Condition]float64{
		ConditionNormal:       0.3,
		ConditionCovidSuspect: 0.3,
	}}
	if got := res.TopCondition(); got != ConditionCovidSuspect {
		t.Errorf("expected covid_suspect to win the tie, got %s", got)
	}
}
