package assessment

import (
	"strings"
	"time"

	"github.com/ehr/alzrisk/internal/domain/risk"
	"github.com/ehr/alzrisk/internal/platform/fhir"
	"github.com/ehr/alzrisk/pkg/fhirmodels"
)

var riskProbabilityCodes = map[risk.Category]string{
	risk.Low:      fhirmodels.RiskProbabilityLow,
	risk.Moderate: fhirmodels.RiskProbabilityModerate,
	risk.High:     fhirmodels.RiskProbabilityHigh,
}

// ToFHIR renders the result as an R4 RiskAssessment resource.
func (r *Result) ToFHIR() map[string]interface{} {
	subject := fhir.Reference{
		Reference: fhir.FormatReference("Patient", r.PatientID),
		Type:      "Patient",
	}
	result := map[string]interface{}{
		"resourceType": "RiskAssessment",
		"id":           r.ID.String(),
		"meta":         fhir.Meta{LastUpdated: r.AssessedAt},
		"identifier": []fhir.Identifier{
			{System: fhirmodels.PatientIdentifierSystem, Value: r.PatientID},
		},
		"status":  fhirmodels.RiskAssessmentStatusFinal,
		"subject": subject,
		"method": fhir.CodeableConcept{
			Coding: []fhir.Coding{{
				System:  fhirmodels.MethodSystem,
				Code:    fhirmodels.MethodCodeModel,
				Display: fhirmodels.MethodDisplayModel,
			}},
		},
		"occurrenceDateTime": r.AssessedAt.Format(time.RFC3339),
		"prediction": []interface{}{
			map[string]interface{}{
				"outcome": fhir.CodeableConcept{
					Coding: []fhir.Coding{{
						System:  fhirmodels.SNOMEDSystem,
						Code:    fhirmodels.SNOMEDAlzheimersDisease,
						Display: fhirmodels.SNOMEDAlzheimersDisplay,
					}},
				},
				"probabilityDecimal": r.Score,
				"qualitativeRisk": fhir.CodeableConcept{
					Coding: []fhir.Coding{{
						System:  fhirmodels.RiskProbabilitySystem,
						Code:    riskProbabilityCodes[r.Category],
						Display: r.Label,
					}},
					Text: r.Label,
				},
				"rationale": r.Message,
			},
		},
		"note": []fhir.Annotation{{Text: r.Disclaimer}},
	}
	if g := fhirGender(r.gender); g != "" {
		subject.Display = r.PatientID + " (" + g + ")"
		result["subject"] = subject
	}
	if len(r.RiskFactors) > 0 {
		basis := make([]fhir.CodeableConcept, 0, len(r.RiskFactors))
		for _, f := range r.RiskFactors {
			basis = append(basis, fhir.CodeableConcept{
				Coding: []fhir.Coding{{System: fhirmodels.RiskFactorSystem, Code: f}},
			})
		}
		result["reasonCode"] = basis
	}
	return result
}

func fhirGender(g string) string {
	switch strings.ToLower(g) {
	case "male":
		return fhirmodels.GenderMale
	case "female":
		return fhirmodels.GenderFemale
	case "other":
		return fhirmodels.GenderOther
	case "":
		return ""
	default:
		return fhirmodels.GenderUnknown
	}
}
