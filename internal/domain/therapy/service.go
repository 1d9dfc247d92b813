package therapy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/imaging"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/platform/eventlog"
)

// redFlagPhrases are checked case-insensitively against the patient notes.
// Each phrase present produces one distinct advisory.
var redFlagPhrases = []struct {
	phrase string
	advice string
}{
	{"chest pain", "Chest pain reported - advise immediate emergency care."},
	{"shortness of breath", "Shortness of breath reported - advise immediate emergency care."},
}

const allergyWarning = "Possible allergy/conflict with patient's allergy list."

// fallbackOption is the generic supportive-care suggestion emitted when no
// formulary entry covers a pneumonia or covid_suspect top condition.
var fallbackOption = OTCOption{
	SKU:       "OTC004",
	DrugName:  "ORS Solution",
	Dose:      "1 sachet in water as needed",
	Frequency: "Up to 3/day",
	Warnings:  []string{"Supportive care only, see doctor if symptoms worsen"},
}

// Engine maps imaging output and patient attributes to OTC suggestions.
type Engine struct {
	formulary FormularyRepository
	events    *eventlog.Log
	logger    zerolog.Logger
}

func NewEngine(formulary FormularyRepository, events *eventlog.Log, logger zerolog.Logger) *Engine {
	return &Engine{formulary: formulary, events: events, logger: logger}
}

// Suggest builds the therapy plan for one run. A formulary entry is
// included when the top condition matches one of its indication tags and
// the patient meets the age floor. An allergy overlap attaches a warning
// instead of excluding the entry: the risk is surfaced, not hidden.
func (e *Engine) Suggest(ctx context.Context, img *imaging.Result, p patient.Record) (*Plan, error) {
	entries, err := e.formulary.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load formulary: %w", err)
	}

	top := img.TopCondition()
	plan := &Plan{OTCOptions: []OTCOption{}, RedFlags: []string{}}

	for _, entry := range entries {
		if !matchesIndication(entry, top) {
			continue
		}
		if p.Age < entry.MinAge {
			continue
		}

		var warnings []string
		if allergyConflict(entry, p.Allergies) {
			warnings = append(warnings, allergyWarning)
		}
		plan.OTCOptions = append(plan.OTCOptions, OTCOption{
			SKU:       entry.SKU,
			DrugName:  entry.DrugName,
			Dose:      entry.Dose,
			Frequency: entry.Frequency,
			Warnings:  warnings,
		})
	}

	if len(plan.OTCOptions) == 0 && (top == imaging.ConditionPneumonia || top == imaging.ConditionCovidSuspect) {
		plan.OTCOptions = append(plan.OTCOptions, fallbackOption)
	}

	lowNotes := strings.ToLower(p.Notes)
	for _, rf := range redFlagPhrases {
		if strings.Contains(lowNotes, rf.phrase) {
			plan.RedFlags = append(plan.RedFlags, rf.advice)
		}
	}

	if e.events != nil {
		e.events.Append("Therapy", "OTC suggestions computed", map[string]interface{}{
			"top_condition": top,
			"otc_count":     len(plan.OTCOptions),
			"red_flags":     plan.RedFlags,
		})
	}
	e.logger.Debug().
		Str("top_condition", string(top)).
		Int("otc_count", len(plan.OTCOptions)).
		Msg("therapy plan built")

	return plan, nil
}

// matchesIndication reports whether the top condition appears in any of the
// entry's indication tags, case-insensitively.
func matchesIndication(entry *FormularyEntry, top imaging.Condition) bool {
	name := strings.ToLower(string(top))
	for _, tag := range entry.IndicationTags {
		if strings.Contains(strings.ToLower(tag), name) {
			return true
		}
	}
	return false
}

// allergyConflict reports whether any contraindication keyword occurs in
// the patient's allergy list, case-insensitive substring match.
func allergyConflict(entry *FormularyEntry, allergies []string) bool {
	if len(allergies) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(allergies, ","))
	for _, kw := range entry.ContraindicationKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}
