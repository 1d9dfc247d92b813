package triage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/triage/triage/internal/domain/ingestion"
	"github.com/triage/triage/internal/platform/eventlog"
)

func postRun(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/triage/runs", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateRun(c); err != nil {
		he, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("unexpected error type: %v", err)
		}
		rec.Code = he.Code
	}
	return rec
}

func TestCreateRun_OK(t *testing.T) {
	h := NewHandler(NewService(testDeps(pneumoniaImaging(), "persistent cough", nil)))

	rec := postRun(t, h, `{"xray_ref":"scans/pneumonia.png"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if plan.RunID == "" {
		t.Error("expected a run id")
	}
	if plan.Order == nil {
		t.Error("expected an order in the plan")
	}
	if plan.Disclaimer != Disclaimer {
		t.Errorf("unexpected disclaimer: %q", plan.Disclaimer)
	}
	if len(plan.EventLog) == 0 {
		t.Error("expected the event log in the response")
	}
}

func TestCreateRun_MissingXrayRef(t *testing.T) {
	h := NewHandler(NewService(testDeps(pneumoniaImaging(), "", nil)))

	rec := postRun(t, h, `{"document_ref":"notes.txt"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateRun_ArtifactNotFound(t *testing.T) {
	deps := testDeps(pneumoniaImaging(), "", nil)
	deps.NewProcessor = func(events *eventlog.Log) ingestion.Processor {
		return &stubProcessor{err: ingestion.ErrArtifactNotFound}
	}
	h := NewHandler(NewService(deps))

	rec := postRun(t, h, `{"xray_ref":"missing.png"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateRun_MalformedBody(t *testing.T) {
	h := NewHandler(NewService(testDeps(pneumoniaImaging(), "", nil)))

	rec := postRun(t, h, `{"xray_ref":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
