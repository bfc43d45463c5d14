package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/alzrisk/internal/domain/risk"
)

// Result is one scored and classified patient record. It is built per request
// and never stored.
type Result struct {
	ID        uuid.UUID `json:"id"`
	PatientID string    `json:"patient_id"`
	risk.Assessment
	RiskFactors []string  `json:"risk_factors"`
	Disclaimer  string    `json:"disclaimer"`
	AssessedAt  time.Time `json:"assessed_at"`

	// gender is carried for the FHIR rendering only.
	gender string
}

// ClassifyRequest is the body of POST /classify.
type ClassifyRequest struct {
	Score *float64 `json:"score"`
}

// CategoryInfo describes one risk band for GET /risk-categories.
type CategoryInfo struct {
	Category risk.Category `json:"category"`
	Label    string        `json:"label"`
	Severity int           `json:"severity"`
	// Min is inclusive. Max is exclusive and omitted for the top band.
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Message string   `json:"message"`
}

func categoryInfo(c risk.Category) CategoryInfo {
	info := CategoryInfo{
		Category: c,
		Label:    c.Label(),
		Severity: c.Severity(),
		Message:  c.Message(),
	}
	lo, hi := c.Bounds()
	if c != risk.Low {
		info.Min = &lo
	}
	if c != risk.High {
		info.Max = &hi
	}
	return info
}
