package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/platform/eventlog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProcess_MissingXrayIsHardError(t *testing.T) {
	fp := NewFileProcessor(nil, zerolog.Nop())

	_, err := fp.Process(context.Background(), "/nonexistent/xray.png", "", nil)
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestProcess_CombinesAndRedactsNotes(t *testing.T) {
	dir := t.TempDir()
	xray := writeFile(t, dir, "xray.png", "img")
	doc := writeFile(t, dir, "report.txt", "Contact jane@example.com, MRN 123456. Complains of chest pain.")

	log := eventlog.New(zerolog.Nop())
	fp := NewFileProcessor(log, zerolog.Nop())

	rec := &patient.Record{Age: 30, Allergies: []string{"penicillin"}, Notes: "walk-in"}
	intake, err := fp.Process(context.Background(), xray, doc, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(intake.Notes, "jane@example.com") || strings.Contains(intake.Notes, "123456") {
		t.Errorf("PII leaked into notes: %q", intake.Notes)
	}
	if !strings.HasPrefix(intake.Notes, "walk-in") {
		t.Errorf("manual notes should lead the combined notes, got %q", intake.Notes)
	}
	if !strings.Contains(intake.Notes, "chest pain") {
		t.Errorf("clinical content lost from notes: %q", intake.Notes)
	}
	if intake.Patient.Age != 30 {
		t.Errorf("expected supplied patient to be kept, got %+v", intake.Patient)
	}
	if log.Len() != 1 {
		t.Errorf("expected one ingestion event, got %d", log.Len())
	}
}

func TestProcess_DefaultPatient(t *testing.T) {
	dir := t.TempDir()
	xray := writeFile(t, dir, "xray.png", "img")

	fp := NewFileProcessor(nil, zerolog.Nop())
	intake, err := fp.Process(context.Background(), xray, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intake.Patient.Age != 45 || len(intake.Patient.Allergies) != 1 {
		t.Errorf("unexpected default patient: %+v", intake.Patient)
	}
}

func TestDeidentify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"call 9876543210 now", "call [REDACTED_PHONE] now"},
		{"id 12345", "id [REDACTED_ID]"},
		{"a@b.io wrote", "[REDACTED_EMAIL] wrote"},
		{"age 45 is kept", "age 45 is kept"},
	}
	for _, tc := range cases {
		if got := Deidentify(tc.in); got != tc.want {
			t.Errorf("Deidentify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
