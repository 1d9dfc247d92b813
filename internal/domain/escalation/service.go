package escalation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/platform/eventlog"
)

// teleSlot is the fixed tele-consult slot offered with every assignment.
const teleSlot = "2025-10-01T09:00:00"

// roster maps the first fired reason's category to a doctor. Pneumonia
// related findings route to the pulmonology-leaning entry, everything else
// to the general physician.
var roster = map[ReasonCategory]Doctor{
	CategorySeverity:     {ID: "doc001", Name: "Dr. A Chopra", TeleSlot: teleSlot},
	CategoryPneumoniaGap: {ID: "doc001", Name: "Dr. A Chopra", TeleSlot: teleSlot},
	CategoryCovid:        {ID: "doc002", Name: "Dr. S Patel", TeleSlot: teleSlot},
	CategoryRedFlag:      {ID: "doc002", Name: "Dr. S Patel", TeleSlot: teleSlot},
	CategoryUrgent:       {ID: "doc002", Name: "Dr. S Patel", TeleSlot: teleSlot},
}

// Engine evaluates the escalation rules for one run.
type Engine struct {
	events *eventlog.Log
	logger zerolog.Logger
}

func NewEngine(events *eventlog.Log, logger zerolog.Logger) *Engine {
	return &Engine{events: events, logger: logger}
}

// Evaluate runs the five rules in fixed order and assembles the decision.
// Recommended is true iff at least one reason fired; the doctor is chosen
// by the first reason's category.
func (e *Engine) Evaluate(ctx context.Context, in Input) (*Decision, error) {
	decision := &Decision{Reasons: []Reason{}}

	for _, rule := range rules {
		decision.Reasons = append(decision.Reasons, rule(in)...)
	}
	decision.Recommended = len(decision.Reasons) > 0

	if decision.Recommended {
		doc, ok := roster[decision.Reasons[0].Category]
		if !ok {
			doc = roster[CategoryUrgent]
		}
		decision.Doctor = &doc
	}

	if e.events != nil {
		e.events.Append("DoctorEscalation", "evaluated case for escalation", map[string]interface{}{
			"recommended":  decision.Recommended,
			"reason_count": len(decision.Reasons),
		})
	}
	e.logger.Debug().
		Bool("recommended", decision.Recommended).
		Int("reasons", len(decision.Reasons)).
		Msg("escalation evaluated")

	return decision, nil
}
