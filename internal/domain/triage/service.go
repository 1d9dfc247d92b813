package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/escalation"
	"github.com/triage/triage/internal/domain/imaging"
	"github.com/triage/triage/internal/domain/ingestion"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
	"github.com/triage/triage/internal/platform/eventlog"
)

// reserveQty is the quantity reserved per suggested SKU.
const reserveQty = 1

// Deps wires the orchestrator. The repositories are shared across runs;
// the collaborator factories build per-run instances so each run's
// components share that run's event log. Nil factories default to the
// local file processor and the rule-based classifier.
type Deps struct {
	Formulary therapy.FormularyRepository
	Directory pharmacy.DirectoryRepository
	Inventory pharmacy.InventoryRepository

	NewProcessor  func(events *eventlog.Log) ingestion.Processor
	NewClassifier func(events *eventlog.Log) imaging.Classifier

	DefaultLocation patient.Location
	Logger          zerolog.Logger
}

// Service sequences one triage run end to end: ingestion, imaging,
// therapy, escalation, and per-SKU pharmacy fulfillment. Stages are
// strictly sequential; any ingestion or imaging failure aborts the run.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.NewProcessor == nil {
		logger := deps.Logger
		deps.NewProcessor = func(events *eventlog.Log) ingestion.Processor {
			return ingestion.NewFileProcessor(events, logger)
		}
	}
	if deps.NewClassifier == nil {
		logger := deps.Logger
		deps.NewClassifier = func(events *eventlog.Log) imaging.Classifier {
			return imaging.NewRuleClassifier(events, logger)
		}
	}
	return &Service{deps: deps}
}

// Run executes the pipeline and assembles the plan. Soft gaps (no
// formulary coverage, no pharmacy candidate, reservation conflicts) become
// plan content; hard input and collaborator errors propagate.
func (s *Service) Run(ctx context.Context, req Request) (*Plan, error) {
	runID := uuid.New()
	events := eventlog.New(s.deps.Logger.With().Str("run_id", runID.String()).Logger())

	intake, err := s.deps.NewProcessor(events).Process(ctx, req.XrayRef, req.DocumentRef, req.Patient)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	img, err := s.deps.NewClassifier(events).Predict(ctx, intake.XrayRef, intake.Notes)
	if err != nil {
		return nil, fmt.Errorf("imaging: %w", err)
	}

	// The rule engines see the combined, de-identified notes.
	rec := intake.Patient
	rec.Notes = intake.Notes

	therapyPlan, err := therapy.NewEngine(s.deps.Formulary, events, s.deps.Logger).Suggest(ctx, img, rec)
	if err != nil {
		return nil, fmt.Errorf("therapy: %w", err)
	}

	decision, err := escalation.NewEngine(events, s.deps.Logger).Evaluate(ctx, escalation.Input{
		Imaging: img,
		Therapy: therapyPlan,
		Patient: rec,
	})
	if err != nil {
		return nil, fmt.Errorf("escalation: %w", err)
	}

	loc := s.deps.DefaultLocation
	if req.Location != nil {
		loc = *req.Location
	}

	pharm := pharmacy.NewService(s.deps.Directory, s.deps.Inventory, events, s.deps.Logger)
	matches := make([]SKUMatch, 0, len(therapyPlan.OTCOptions))
	var reserved []SKUMatch
	for _, opt := range therapyPlan.OTCOptions {
		match, err := pharm.FindNearestWithStock(ctx, loc, opt.SKU, reserveQty)
		if errors.Is(err, pharmacy.ErrNoCandidate) {
			matches = append(matches, SKUMatch{SKU: opt.SKU})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("pharmacy match %s: %w", opt.SKU, err)
		}

		ok, err := pharm.Reserve(ctx, match.PharmacyID, opt.SKU, reserveQty)
		if err != nil {
			return nil, fmt.Errorf("reserve %s: %w", opt.SKU, err)
		}
		match.Reserved = ok

		sm := SKUMatch{SKU: opt.SKU, Match: match}
		matches = append(matches, sm)
		if ok {
			reserved = append(reserved, sm)
		}
	}

	var order *Order
	if len(reserved) > 0 {
		order = &Order{
			OrderID: "ORD-" + runID.String()[:8],
			Items:   reserved,
		}
	}

	events.Append("Orchestrator", "run completed", map[string]interface{}{
		"order_created": order != nil,
		"escalated":     decision.Recommended,
	})

	return &Plan{
		RunID:           runID.String(),
		Ingestion:       intake,
		Imaging:         img,
		Therapy:         therapyPlan,
		Escalation:      decision,
		PharmacyMatches: matches,
		Order:           order,
		Disclaimer:      Disclaimer,
		EventLog:        events.Events(),
	}, nil
}
