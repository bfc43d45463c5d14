package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ehr/alzrisk/internal/domain/patient"
)

func TestGenerateDocument_Structure(t *testing.T) {
	g := NewGenerator("1.0.0", "http://localhost:8000")
	doc := g.GenerateDocument()

	if doc["openapi"] != "3.0.3" {
		t.Errorf("expected openapi '3.0.3', got %v", doc["openapi"])
	}
	info, ok := doc["info"].(map[string]interface{})
	if !ok {
		t.Fatal("expected info object")
	}
	if info["version"] != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %v", info["version"])
	}
	servers, ok := doc["servers"].([]map[string]string)
	if !ok || len(servers) != 1 || servers[0]["url"] != "http://localhost:8000" {
		t.Errorf("unexpected servers: %v", doc["servers"])
	}
}

func TestGenerateDocument_Paths(t *testing.T) {
	doc := NewGenerator("1.0.0", "").GenerateDocument()
	paths, ok := doc["paths"].(map[string]interface{})
	if !ok {
		t.Fatal("expected paths object")
	}

	want := map[string]string{
		"/api/v1/assessments":           "post",
		"/api/v1/classify":              "post",
		"/api/v1/risk-categories":       "get",
		"/api/v1/patient-id":            "get",
		"/api/v1/patient-template":      "get",
		"/fhir/RiskAssessment/$predict": "post",
		"/health":                       "get",
		"/health/upstream":              "get",
	}
	for path, method := range want {
		item, ok := paths[path].(map[string]interface{})
		if !ok {
			t.Errorf("missing path %s", path)
			continue
		}
		if _, ok := item[method]; !ok {
			t.Errorf("path %s missing %s operation", path, method)
		}
	}
	if len(paths) != len(want) {
		t.Errorf("expected %d paths, got %d", len(want), len(paths))
	}
}

func TestRecordSchema_MatchesWireFields(t *testing.T) {
	schema := recordSchema()
	props := schema["properties"].(map[string]interface{})

	if len(props) != len(patient.FieldNames) {
		t.Fatalf("expected %d properties, got %d", len(patient.FieldNames), len(props))
	}
	for _, name := range patient.FieldNames {
		if _, ok := props[name]; !ok {
			t.Errorf("schema missing %s", name)
		}
	}

	types := map[string]string{
		"PatientID":        "string",
		"Age":              "integer",
		"BMI":              "number",
		"Diabetes":         "boolean",
		"MMSE":             "integer",
		"Gender":           "string",
		"CholesterolLDL":   "number",
		"MemoryComplaints": "boolean",
	}
	for name, typ := range types {
		prop := props[name].(map[string]interface{})
		if prop["type"] != typ {
			t.Errorf("%s: expected type %s, got %v", name, typ, prop["type"])
		}
	}

	gender := props["Gender"].(map[string]interface{})
	enum, ok := gender["enum"].([]string)
	if !ok || len(enum) != 3 {
		t.Errorf("expected 3 gender values, got %v", gender["enum"])
	}
	if _, ok := props["Age"].(map[string]interface{})["enum"]; ok {
		t.Error("numeric fields should not carry an enum")
	}
}

func TestComponentSchemas_Categories(t *testing.T) {
	schemas := componentSchemas()
	rc := schemas["RiskCategory"].(map[string]interface{})
	props := rc["properties"].(map[string]interface{})
	cat := props["category"].(map[string]interface{})
	enum := cat["enum"].([]string)
	if len(enum) != 3 || enum[0] != "Low" || enum[2] != "High" {
		t.Errorf("unexpected category enum: %v", enum)
	}
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	NewGenerator("1.0.0", "http://localhost:8000").RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("expected openapi 3.0.3, got %v", doc["openapi"])
	}
	comps := doc["components"].(map[string]interface{})
	schemas := comps["schemas"].(map[string]interface{})
	for _, name := range []string{"PatientRecord", "AssessmentResult", "Classification", "RiskCategory", "Error"} {
		if _, ok := schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
}
