package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/platform/eventlog"
)

// ErrArtifactNotFound is returned when the required imaging artifact does
// not resolve. The orchestrator treats it as a hard input error.
var ErrArtifactNotFound = errors.New("imaging artifact not found")

// Intake is the ingestion output consumed by the rest of the pipeline.
type Intake struct {
	Patient  patient.Record `json:"patient"`
	XrayRef  string         `json:"xray_ref"`
	RawNotes string         `json:"raw_notes,omitempty"`
	Notes    string         `json:"notes"`
}

// Processor resolves the run inputs into an Intake.
type Processor interface {
	Process(ctx context.Context, xrayRef, documentRef string, p *patient.Record) (*Intake, error)
}

// FileProcessor reads artifacts from the local filesystem: the xray ref must
// exist, and the optional document ref is read as a plain-text clinical
// report. Extracted notes are de-identified before leaving this package.
type FileProcessor struct {
	events *eventlog.Log
	logger zerolog.Logger
}

func NewFileProcessor(events *eventlog.Log, logger zerolog.Logger) *FileProcessor {
	return &FileProcessor{events: events, logger: logger}
}

func (fp *FileProcessor) Process(ctx context.Context, xrayRef, documentRef string, p *patient.Record) (*Intake, error) {
	if _, err := os.Stat(xrayRef); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, xrayRef)
	}

	var raw string
	if documentRef != "" {
		data, err := os.ReadFile(documentRef)
		if err != nil {
			fp.logger.Warn().Err(err).Str("document", documentRef).Msg("document unreadable, continuing without it")
		} else {
			raw = string(data)
		}
	}

	deidentified := Deidentify(raw)

	rec := defaultPatient()
	if p != nil {
		rec = *p
	}

	combined := strings.TrimSpace(strings.TrimSpace(rec.Notes) + " " + deidentified)

	intake := &Intake{
		Patient:  rec,
		XrayRef:  xrayRef,
		RawNotes: raw,
		Notes:    combined,
	}

	if fp.events != nil {
		fp.events.Append("Ingestion", "processed inputs", map[string]interface{}{
			"xray_ref":  xrayRef,
			"document":  documentRef,
			"notes_len": len(combined),
		})
	}

	return intake, nil
}

// defaultPatient mirrors the demo default used when no record is supplied.
func defaultPatient() patient.Record {
	return patient.Record{Age: 45, Allergies: []string{"ibuprofen"}}
}
