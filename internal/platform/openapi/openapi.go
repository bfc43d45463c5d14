package openapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/alzrisk/internal/domain/patient"
	"github.com/ehr/alzrisk/internal/domain/risk"
)

// Generator builds an OpenAPI 3.0 document for the gateway's routes.
type Generator struct {
	version string
	baseURL string
}

// NewGenerator creates a new OpenAPI document generator.
func NewGenerator(version, baseURL string) *Generator {
	return &Generator{version: version, baseURL: baseURL}
}

// GenerateDocument produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateDocument() map[string]interface{} {
	recordBody := map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": ref("PatientRecord"),
			},
		},
	}

	paths := map[string]interface{}{
		"/api/v1/assessments": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Score a patient record and classify the result",
				"operationId": "createAssessment",
				"tags":        []string{"Assessment"},
				"requestBody": recordBody,
				"responses": map[string]interface{}{
					"200": jsonResponse("Assessment result", ref("AssessmentResult")),
					"400": jsonResponse("Invalid patient record", ref("Error")),
					"502": jsonResponse("Prediction service unavailable", ref("Error")),
				},
			},
		},
		"/api/v1/classify": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Classify a probability score",
				"operationId": "classifyScore",
				"tags":        []string{"Assessment"},
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]interface{}{
								"type":     "object",
								"required": []string{"score"},
								"properties": map[string]interface{}{
									"score": map[string]string{"type": "number"},
								},
							},
						},
					},
				},
				"responses": map[string]interface{}{
					"200": jsonResponse("Classification", ref("Classification")),
					"400": jsonResponse("Missing or non-finite score", ref("Error")),
				},
			},
		},
		"/api/v1/risk-categories": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List risk categories and their score ranges",
				"operationId": "listRiskCategories",
				"tags":        []string{"Reference"},
				"responses": map[string]interface{}{
					"200": jsonResponse("Categories", map[string]interface{}{
						"type":  "array",
						"items": ref("RiskCategory"),
					}),
				},
			},
		},
		"/api/v1/patient-id": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Generate a patient identifier",
				"operationId": "newPatientID",
				"tags":        []string{"Reference"},
				"responses": map[string]interface{}{
					"200": jsonResponse("Identifier", map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"patient_id": map[string]string{"type": "string", "pattern": `^PID\d{1,4}$`},
						},
					}),
				},
			},
		},
		"/api/v1/patient-template": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Intake form defaults",
				"operationId": "patientTemplate",
				"tags":        []string{"Reference"},
				"responses": map[string]interface{}{
					"200": jsonResponse("Patient record", ref("PatientRecord")),
				},
			},
		},
		"/fhir/RiskAssessment/$predict": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Score a patient record and return a FHIR RiskAssessment",
				"operationId": "predictRiskAssessment",
				"tags":        []string{"FHIR"},
				"requestBody": recordBody,
				"responses": map[string]interface{}{
					"200": fhirResponse("RiskAssessment"),
					"400": fhirResponse("OperationOutcome"),
					"502": fhirResponse("OperationOutcome"),
				},
			},
		},
		"/health": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Liveness",
				"operationId": "health",
				"tags":        []string{"Operations"},
				"security":    []interface{}{},
				"responses": map[string]interface{}{
					"200": map[string]string{"description": "Gateway is up"},
				},
			},
		},
		"/health/upstream": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Model service readiness",
				"operationId": "upstreamHealth",
				"tags":        []string{"Operations"},
				"security":    []interface{}{},
				"responses": map[string]interface{}{
					"200": map[string]string{"description": "Model loaded"},
					"503": map[string]string{"description": "Model unreachable or not loaded"},
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Alzheimer's Risk Assessment API",
			"version":     g.version,
			"description": "Scores patient records against the Alzheimer's prediction model and classifies the result.",
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": componentSchemas(),
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]string{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
		"security": []map[string][]string{
			{"bearerAuth": {}},
		},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

func jsonResponse(desc string, schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": desc,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func fhirResponse(resourceType string) map[string]interface{} {
	return map[string]interface{}{
		"description": resourceType,
		"content": map[string]interface{}{
			"application/fhir+json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"resourceType": map[string]interface{}{"type": "string", "enum": []string{resourceType}},
					},
				},
			},
		},
	}
}

// enumValues lists the accepted strings for each categorical record field.
var enumValues = map[string][]string{
	"Gender": {string(patient.GenderMale), string(patient.GenderFemale), string(patient.GenderOther)},
	"Ethnicity": {
		string(patient.EthnicityCaucasian), string(patient.EthnicityAfrican), string(patient.EthnicityHispanic),
		string(patient.EthnicityAsian), string(patient.EthnicityOther),
	},
	"Smoking": {string(patient.SmokingNever), string(patient.SmokingFormer), string(patient.SmokingCurrent)},
	"AlcoholConsumption": {
		string(patient.AlcoholNone), string(patient.AlcoholLight), string(patient.AlcoholModerate), string(patient.AlcoholHeavy),
	},
	"PhysicalActivity": {
		string(patient.ActivitySedentary), string(patient.ActivityLight), string(patient.ActivityModerate), string(patient.ActivityVigorous),
	},
	"DietQuality":  qualities(),
	"SleepQuality": qualities(),
}

func qualities() []string {
	return []string{
		string(patient.QualityPoor), string(patient.QualityFair), string(patient.QualityGood), string(patient.QualityExcellent),
	}
}

// recordSchema derives the PatientRecord schema from the struct's JSON tags so
// the document cannot drift from the wire format.
func recordSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(patient.FieldNames))
	t := reflect.TypeOf(patient.Record{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		prop := map[string]interface{}{"type": jsonType(f.Type.Kind())}
		if vals, ok := enumValues[name]; ok {
			prop["enum"] = vals
		}
		props[name] = prop
	}
	return map[string]interface{}{
		"type":                 "object",
		"required":             patient.FieldNames,
		"additionalProperties": false,
		"properties":           props,
	}
}

func jsonType(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "string"
	}
}

func componentSchemas() map[string]interface{} {
	var names []string
	for _, c := range risk.Categories() {
		names = append(names, c.String())
	}
	category := map[string]interface{}{"type": "string", "enum": names}

	return map[string]interface{}{
		"PatientRecord": recordSchema(),
		"AssessmentResult": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":           map[string]string{"type": "string", "format": "uuid"},
				"patient_id":   map[string]string{"type": "string"},
				"score":        map[string]string{"type": "number"},
				"percent":      map[string]string{"type": "integer"},
				"category":     category,
				"label":        map[string]string{"type": "string"},
				"severity":     map[string]string{"type": "integer"},
				"message":      map[string]string{"type": "string"},
				"risk_factors": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
				"disclaimer":   map[string]string{"type": "string"},
				"assessed_at":  map[string]string{"type": "string", "format": "date-time"},
			},
		},
		"Classification": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"score":    map[string]string{"type": "number"},
				"percent":  map[string]string{"type": "integer"},
				"category": category,
				"label":    map[string]string{"type": "string"},
				"severity": map[string]string{"type": "integer"},
				"message":  map[string]string{"type": "string"},
			},
		},
		"RiskCategory": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"category": category,
				"label":    map[string]string{"type": "string"},
				"severity": map[string]string{"type": "integer"},
				"min":      map[string]string{"type": "number"},
				"max":      map[string]string{"type": "number"},
				"message":  map[string]string{"type": "string"},
			},
		},
		"Error": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"message": map[string]string{"type": "string"},
			},
		},
	}
}

// RegisterRoutes registers the OpenAPI endpoint.
func (g *Generator) RegisterRoutes(e *echo.Echo) {
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateDocument())
	})
}
