package escalation

import (
	"fmt"
	"strings"

	"github.com/triage/triage/internal/domain/imaging"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/domain/therapy"
)

// Input is the typed view of one run that the rules evaluate. Each rule is
// a pure function over Input so it can be unit tested in isolation.
type Input struct {
	Imaging *imaging.Result
	Therapy *therapy.Plan
	Patient patient.Record
}

// Rule inspects the input and returns zero or more reasons.
type Rule func(in Input) []Reason

// rules run in fixed order; the order decides which reason is first, and
// the first reason's category picks the doctor.
var rules = []Rule{
	severityRule,
	covidRule,
	redFlagRule,
	urgentSymptomsRule,
	pneumoniaGapRule,
}

// severityRule fires for moderate or severe imaging severity.
func severityRule(in Input) []Reason {
	if !in.Imaging.SeverityHint.Escalates() {
		return nil
	}
	return []Reason{{
		Category: CategorySeverity,
		Text:     fmt.Sprintf("Imaging shows %s pneumonia risk.", in.Imaging.SeverityHint),
	}}
}

// covidRule fires when the covid_suspect probability exceeds 0.5.
func covidRule(in Input) []Reason {
	if in.Imaging.Prob(imaging.ConditionCovidSuspect) <= 0.5 {
		return nil
	}
	return []Reason{{Category: CategoryCovid, Text: "High probability of COVID suspect."}}
}

// redFlagRule copies every therapy red flag verbatim.
func redFlagRule(in Input) []Reason {
	var out []Reason
	for _, rf := range in.Therapy.RedFlags {
		out = append(out, Reason{Category: CategoryRedFlag, Text: rf})
	}
	return out
}

// urgentSymptomsRule fires once when the notes mention chest pain or
// shortness of breath.
func urgentSymptomsRule(in Input) []Reason {
	notes := strings.ToLower(in.Patient.Notes)
	if !strings.Contains(notes, "chest pain") && !strings.Contains(notes, "shortness of breath") {
		return nil
	}
	return []Reason{{Category: CategoryUrgent, Text: "Patient symptoms indicate urgent care needed."}}
}

// pneumoniaGapRule fires when therapy produced no OTC options while the
// pneumonia probability exceeds 0.6.
func pneumoniaGapRule(in Input) []Reason {
	if len(in.Therapy.OTCOptions) > 0 || in.Imaging.Prob(imaging.ConditionPneumonia) <= 0.6 {
		return nil
	}
	return []Reason{{Category: CategoryPneumoniaGap, Text: "No safe OTC available for suspected pneumonia."}}
}
