package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/alzrisk/internal/domain/patient"
	"github.com/ehr/alzrisk/internal/platform/auth"
	"github.com/ehr/alzrisk/internal/platform/fhir"
	"github.com/ehr/alzrisk/internal/platform/predictor"
)

func newTestHandler(p Predictor) (*Handler, *echo.Echo) {
	svc := NewService(p, zerolog.Nop())
	return NewHandler(svc), echo.New()
}

func recordBody(t *testing.T, rec *patient.Record) string {
	t.Helper()
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(b)
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_CreateAssessment(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{score: 0.12})
	c, rec := postJSON(e, "/api/v1/assessments", recordBody(t, healthyRecord()))

	if err := h.CreateAssessment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["category"] != "Low" || body["label"] != "Low Risk" || body["percent"] != float64(12) {
		t.Errorf("unexpected classification fields: %v", body)
	}
	if body["patient_id"] != "PID1234" {
		t.Errorf("expected PID1234, got %v", body["patient_id"])
	}
	for _, k := range []string{"id", "score", "severity", "message", "risk_factors", "disclaimer", "assessed_at"} {
		if _, ok := body[k]; !ok {
			t.Errorf("response missing %q", k)
		}
	}
}

func TestHandler_CreateAssessment_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `PatientID=PID1`},
		{"missing fields", `{"PatientID":"PID1","Age":70}`},
		{"unknown field", strings.Replace(recordBody(t, healthyRecord()), `"Age":`, `"Shoe":1,"Age":`, 1)},
		{"bad enum", strings.Replace(recordBody(t, healthyRecord()), `"Male"`, `"M"`, 1)},
		{"out of range", strings.Replace(recordBody(t, healthyRecord()), `"MMSE":28`, `"MMSE":45`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakePredictor{score: 0.5}
			h, e := newTestHandler(fp)
			c, _ := postJSON(e, "/api/v1/assessments", tt.body)

			err := h.CreateAssessment(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", httpErr.Code)
			}
			if fp.calls != 0 {
				t.Error("bad input must not reach the model")
			}
		})
	}
}

func TestHandler_CreateAssessment_UpstreamFailure(t *testing.T) {
	failures := []error{
		&predictor.NetworkError{Op: "POST", URL: "http://model/predict", Err: errors.New("connection refused")},
		&predictor.TransportError{StatusCode: 500, Status: "500 Internal Server Error"},
		&predictor.ProtocolError{Reason: `missing "prediction" field`},
		&predictor.NetworkError{Op: "POST", Err: context.DeadlineExceeded},
	}
	for _, failure := range failures {
		h, e := newTestHandler(&fakePredictor{err: failure})
		c, _ := postJSON(e, "/api/v1/assessments", recordBody(t, healthyRecord()))

		err := h.CreateAssessment(c)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("expected echo.HTTPError, got %T", err)
		}
		if httpErr.Code != http.StatusBadGateway {
			t.Errorf("%T: expected 502, got %d", failure, httpErr.Code)
		}
		if httpErr.Message != UnavailableMessage {
			t.Errorf("upstream details must not leak, got %v", httpErr.Message)
		}
	}
}

func TestHandler_PredictFHIR(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{score: 0.55})
	c, rec := postJSON(e, "/fhir/RiskAssessment/$predict", recordBody(t, healthyRecord()))

	if err := h.PredictFHIR(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["resourceType"] != "RiskAssessment" || body["status"] != "final" {
		t.Errorf("unexpected resource: %v", body)
	}
}

func TestHandler_PredictFHIR_Errors(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{err: &predictor.TransportError{StatusCode: 503}})

	c, rec := postJSON(e, "/fhir/RiskAssessment/$predict", `{}`)
	if err := h.PredictFHIR(c); err != nil {
		t.Fatalf("FHIR errors are rendered, not returned: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var oo fhir.OperationOutcome
	json.Unmarshal(rec.Body.Bytes(), &oo)
	if oo.ResourceType != "OperationOutcome" || oo.Issue[0].Code != fhir.IssueTypeInvalid {
		t.Errorf("expected invalid OperationOutcome, got %s", rec.Body.String())
	}

	c, rec = postJSON(e, "/fhir/RiskAssessment/$predict", recordBody(t, healthyRecord()))
	h.PredictFHIR(c)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), UnavailableMessage) || !strings.Contains(rec.Body.String(), fhir.IssueTypeTransient) {
		t.Errorf("expected transient outcome, got %s", rec.Body.String())
	}
}

func TestHandler_Classify(t *testing.T) {
	tests := []struct {
		body     string
		wantCode int
		category string
	}{
		{`{"score":0.39}`, http.StatusOK, "Low"},
		{`{"score":0.4}`, http.StatusOK, "Moderate"},
		{`{"score":0.7}`, http.StatusOK, "High"},
		{`{"score":-2}`, http.StatusOK, "Low"},
		{`{}`, http.StatusBadRequest, ""},
		{`{"score":"high"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		fp := &fakePredictor{}
		h, e := newTestHandler(fp)
		c, rec := postJSON(e, "/api/v1/classify", tt.body)

		err := h.Classify(c)
		if tt.wantCode != http.StatusOK {
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.wantCode {
				t.Errorf("%s: expected %d, got %v", tt.body, tt.wantCode, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.body, err)
		}
		var body map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["category"] != tt.category {
			t.Errorf("%s: expected %s, got %v", tt.body, tt.category, body["category"])
		}
		if fp.calls != 0 {
			t.Error("classify must not call the model")
		}
	}
}

func TestHandler_ListCategories(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk-categories", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListCategories(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cats []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(cats) != 3 || cats[0]["category"] != "Low" || cats[2]["label"] != "High Risk" {
		t.Errorf("unexpected categories: %v", cats)
	}
	if _, ok := cats[0]["min"]; ok {
		t.Error("Low has no lower bound")
	}
}

func TestHandler_NewPatientIDAndTemplate(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patient-id", nil)
	rec := httptest.NewRecorder()
	if err := h.NewPatientID(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var idBody map[string]string
	json.Unmarshal(rec.Body.Bytes(), &idBody)
	if !patient.ValidID(idBody["patient_id"]) {
		t.Errorf("expected a PID, got %q", idBody["patient_id"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/patient-template", nil)
	rec = httptest.NewRecorder()
	if err := h.PatientTemplate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := patient.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("template must decode as a full record: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("template must validate: %v", err)
	}
}

func TestHandler_UpstreamHealth(t *testing.T) {
	tests := []struct {
		name string
		fp   *fakePredictor
		want int
	}{
		{"loaded", &fakePredictor{status: &predictor.ServiceStatus{Status: "success", ModelStatus: "loaded", Version: "1.0.0"}}, http.StatusOK},
		{"not loaded", &fakePredictor{status: &predictor.ServiceStatus{Status: "success", ModelStatus: "not loaded"}}, http.StatusServiceUnavailable},
		{"unreachable", &fakePredictor{statusErr: &predictor.NetworkError{Err: errors.New("refused")}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler(tt.fp)
			req := httptest.NewRequest(http.MethodGet, "/health/upstream", nil)
			rec := httptest.NewRecorder()
			if err := h.UpstreamHealth(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandler_RegisterRoutes_RoleCheck(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{score: 0.3})
	api := e.Group("/api/v1", withRoles("billing"))
	h.RegisterRoutes(api, e.Group("/fhir", withRoles("billing")))

	for _, path := range []string{"/api/v1/assessments", "/fhir/RiskAssessment/$predict"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(recordBody(t, healthyRecord())))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403 without clinician role, got %d", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/risk-categories", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("risk categories should be readable by any authenticated user, got %d", rec.Code)
	}
}

func TestHandler_RegisterRoutes_Clinician(t *testing.T) {
	h, e := newTestHandler(&fakePredictor{score: 0.3})
	h.RegisterRoutes(e.Group("/api/v1", auth.DevAuthMiddleware()), e.Group("/fhir", auth.DevAuthMiddleware()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(recordBody(t, healthyRecord())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func withRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), auth.UserRolesKey, roles)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
