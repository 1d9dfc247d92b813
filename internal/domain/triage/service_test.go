package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/imaging"
	"github.com/triage/triage/internal/domain/ingestion"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
	"github.com/triage/triage/internal/platform/eventlog"
)

// -- Stub collaborators --

type stubProcessor struct {
	events *eventlog.Log
	intake *ingestion.Intake
	err    error
}

func (s *stubProcessor) Process(_ context.Context, xrayRef, _ string, p *patient.Record) (*ingestion.Intake, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.events != nil {
		s.events.Append("Ingestion", "processed inputs", nil)
	}
	out := *s.intake
	out.XrayRef = xrayRef
	if p != nil {
		out.Patient = *p
	}
	return &out, nil
}

type stubClassifier struct {
	events *eventlog.Log
	result *imaging.Result
}

func (s *stubClassifier) Predict(_ context.Context, _, _ string) (*imaging.Result, error) {
	if s.events != nil {
		s.events.Append("Imaging", "predicted conditions", nil)
	}
	return s.result, nil
}

// rejectingInventory reports stock on reads but refuses every reservation,
// simulating stock vanishing between match and reserve.
type rejectingInventory struct {
	pharmacy.InventoryRepository
}

func (r *rejectingInventory) Reserve(context.Context, string, string, int) (bool, error) {
	return false, nil
}

func pneumoniaImaging() *imaging.Result {
	return &imaging.Result{
		ConditionProbs: map[imaging.Condition]float64{
			imaging.ConditionPneumonia:    0.7,
			imaging.ConditionNormal:       0.2,
			imaging.ConditionCovidSuspect: 0.1,
		},
		SeverityHint: imaging.SeverityModerate,
	}
}

func normalImaging() *imaging.Result {
	return &imaging.Result{
		ConditionProbs: map[imaging.Condition]float64{
			imaging.ConditionPneumonia:    0.1,
			imaging.ConditionNormal:       0.8,
			imaging.ConditionCovidSuspect: 0.1,
		},
		SeverityHint: imaging.SeverityMild,
	}
}

func testDeps(result *imaging.Result, notes string, inv pharmacy.InventoryRepository) Deps {
	formulary := therapy.NewFormularyRepoMem([]*therapy.FormularyEntry{
		{SKU: "OTC001", DrugName: "Paracetamol 500mg", IndicationTags: []string{"pneumonia"}, MinAge: 12, Dose: "500mg", Frequency: "Every 6h"},
	})
	directory := pharmacy.NewDirectoryRepoMem([]*pharmacy.Pharmacy{
		{ID: "ph1", Name: "Central Pharmacy", Lat: 0, Lon: 0, DeliveryRadiusKm: 10},
	})
	if inv == nil {
		inv = pharmacy.NewInventoryRepoMem([]*pharmacy.InventoryEntry{
			{PharmacyID: "ph1", SKU: "OTC001", Qty: 5, Price: 12},
		})
	}

	return Deps{
		Formulary: formulary,
		Directory: directory,
		Inventory: inv,
		NewProcessor: func(events *eventlog.Log) ingestion.Processor {
			return &stubProcessor{
				events: events,
				intake: &ingestion.Intake{Patient: patient.Record{Age: 45}, Notes: notes},
			}
		},
		NewClassifier: func(events *eventlog.Log) imaging.Classifier {
			return &stubClassifier{events: events, result: result}
		},
		Logger: zerolog.Nop(),
	}
}

func TestRun_FullPipelineCreatesOrder(t *testing.T) {
	deps := testDeps(pneumoniaImaging(), "persistent cough", nil)
	svc := NewService(deps)

	plan, err := svc.Run(context.Background(), Request{XrayRef: "scans/pneumonia.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Therapy.OTCOptions) != 1 {
		t.Fatalf("expected 1 OTC option, got %d", len(plan.Therapy.OTCOptions))
	}
	if len(plan.PharmacyMatches) != 1 {
		t.Fatalf("expected 1 SKU outcome, got %d", len(plan.PharmacyMatches))
	}
	m := plan.PharmacyMatches[0]
	if m.Match == nil || !m.Match.Reserved {
		t.Fatalf("expected a reserved match, got %+v", m)
	}
	if plan.Order == nil {
		t.Fatal("expected an order when a reservation succeeded")
	}
	if len(plan.Order.Items) != 1 || plan.Order.Items[0].SKU != "OTC001" {
		t.Errorf("unexpected order items: %+v", plan.Order.Items)
	}
	if plan.Order.OrderID == "" {
		t.Error("expected a non-empty order id")
	}

	// Stock actually decremented.
	entry, err := deps.Inventory.Get(context.Background(), "ph1", "OTC001")
	if err != nil {
		t.Fatalf("inventory read: %v", err)
	}
	if entry.Qty != 4 {
		t.Errorf("expected qty 4 after one reservation, got %d", entry.Qty)
	}

	// Moderate severity escalates and assigns a doctor.
	if !plan.Escalation.Recommended || plan.Escalation.Doctor == nil {
		t.Errorf("expected escalation with doctor, got %+v", plan.Escalation)
	}

	if plan.Disclaimer == "" {
		t.Error("expected disclaimer on the plan")
	}
}

func TestRun_EventLogEndsWithCompletion(t *testing.T) {
	svc := NewService(testDeps(pneumoniaImaging(), "", nil))

	plan, err := svc.Run(context.Background(), Request{XrayRef: "scans/x.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.EventLog) == 0 {
		t.Fatal("expected a non-empty event log")
	}
	last := plan.EventLog[len(plan.EventLog)-1]
	if last.Source != "Orchestrator" || last.Message != "run completed" {
		t.Errorf("expected completion event last, got %+v", last)
	}
	if plan.EventLog[0].Source != "Ingestion" {
		t.Errorf("expected ingestion event first, got %+v", plan.EventLog[0])
	}
}

func TestRun_IngestionFailureAborts(t *testing.T) {
	deps := testDeps(pneumoniaImaging(), "", nil)
	deps.NewProcessor = func(events *eventlog.Log) ingestion.Processor {
		return &stubProcessor{err: ingestion.ErrArtifactNotFound}
	}
	svc := NewService(deps)

	_, err := svc.Run(context.Background(), Request{XrayRef: "missing.png"})
	if !errors.Is(err, ingestion.ErrArtifactNotFound) {
		t.Fatalf("expected wrapped ErrArtifactNotFound, got %v", err)
	}
}

func TestRun_NoStockNoEscalationYieldsNullOrder(t *testing.T) {
	// Normal imaging, no red flags: zero escalation triggers. Empty
	// inventory: no fulfillment. The run still completes with a plan.
	empty := pharmacy.NewInventoryRepoMem(nil)
	svc := NewService(testDeps(normalImaging(), "routine checkup", empty))

	plan, err := svc.Run(context.Background(), Request{XrayRef: "scans/normal.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Order != nil {
		t.Errorf("expected nil order, got %+v", plan.Order)
	}
	if plan.Escalation.Recommended || plan.Escalation.Doctor != nil {
		t.Errorf("expected no escalation, got %+v", plan.Escalation)
	}
	if len(plan.EventLog) == 0 {
		t.Fatal("expected a non-empty event log")
	}
	last := plan.EventLog[len(plan.EventLog)-1]
	if last.Message != "run completed" {
		t.Errorf("expected completion event last, got %+v", last)
	}
}

func TestRun_ReservationConflictDegradesGracefully(t *testing.T) {
	base := pharmacy.NewInventoryRepoMem([]*pharmacy.InventoryEntry{
		{PharmacyID: "ph1", SKU: "OTC001", Qty: 5, Price: 12},
	})
	svc := NewService(testDeps(pneumoniaImaging(), "", &rejectingInventory{base}))

	plan, err := svc.Run(context.Background(), Request{XrayRef: "scans/x.png"})
	if err != nil {
		t.Fatalf("conflict must not abort the run: %v", err)
	}
	if len(plan.PharmacyMatches) != 1 {
		t.Fatalf("expected 1 SKU outcome, got %d", len(plan.PharmacyMatches))
	}
	m := plan.PharmacyMatches[0]
	if m.Match == nil || m.Match.Reserved {
		t.Errorf("expected an unreserved match, got %+v", m)
	}
	if plan.Order != nil {
		t.Errorf("expected nil order when nothing reserved, got %+v", plan.Order)
	}
}

func TestRun_UsesSuppliedLocation(t *testing.T) {
	deps := testDeps(pneumoniaImaging(), "", nil)
	// Default location far away from the only pharmacy.
	deps.DefaultLocation = patient.Location{Lat: 50, Lon: 50}
	svc := NewService(deps)

	// Without an explicit location the pharmacy is out of range.
	plan, err := svc.Run(context.Background(), Request{XrayRef: "scans/x.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Order != nil {
		t.Fatal("expected no order from the far default location")
	}

	// Supplying the nearby location restores fulfillment.
	plan, err = svc.Run(context.Background(), Request{
		XrayRef:  "scans/x.png",
		Location: &patient.Location{Lat: 0, Lon: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Order == nil {
		t.Fatal("expected an order from the nearby location")
	}
}
