package triage

import (
	"github.com/triage/triage/internal/domain/escalation"
	"github.com/triage/triage/internal/domain/imaging"
	"github.com/triage/triage/internal/domain/ingestion"
	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
	"github.com/triage/triage/internal/platform/eventlog"
)

// Disclaimer is attached to every plan.
const Disclaimer = "Educational demo only - NOT medical advice. For emergencies, call local emergency services."

// Request carries the inputs for one triage run.
type Request struct {
	XrayRef     string            `json:"xray_ref"`
	DocumentRef string            `json:"document_ref,omitempty"`
	Patient     *patient.Record   `json:"patient,omitempty"`
	Location    *patient.Location `json:"location,omitempty"`
}

// SKUMatch records the fulfillment outcome for one suggested SKU. Match is
// nil when no pharmacy in range had stock.
type SKUMatch struct {
	SKU   string          `json:"sku"`
	Match *pharmacy.Match `json:"match"`
}

// Order is created only when at least one reservation succeeded; it holds
// exactly the reserved matches.
type Order struct {
	OrderID string     `json:"order_id"`
	Items   []SKUMatch `json:"items"`
}

// Plan is the assembled result of a complete triage run, including the
// run's full audit trail.
type Plan struct {
	RunID           string               `json:"run_id"`
	Ingestion       *ingestion.Intake    `json:"ingestion"`
	Imaging         *imaging.Result      `json:"imaging"`
	Therapy         *therapy.Plan        `json:"therapy"`
	Escalation      *escalation.Decision `json:"escalation"`
	PharmacyMatches []SKUMatch           `json:"pharmacy_matches"`
	Order           *Order               `json:"order"`
	Disclaimer      string               `json:"disclaimer"`
	EventLog        []eventlog.Event     `json:"event_log"`
}
