package fhirmodels

// FHIR R4 value set constants used by the RiskAssessment output.

// RiskAssessmentStatus values (observation-status).
const (
	RiskAssessmentStatusRegistered     = "registered"
	RiskAssessmentStatusPreliminary    = "preliminary"
	RiskAssessmentStatusFinal          = "final"
	RiskAssessmentStatusAmended        = "amended"
	RiskAssessmentStatusCancelled      = "cancelled"
	RiskAssessmentStatusEnteredInError = "entered-in-error"
)

// RiskProbability codes from the HL7 risk-probability code system.
const (
	RiskProbabilitySystem = "http://terminology.hl7.org/CodeSystem/risk-probability"

	RiskProbabilityNegligible = "negligible"
	RiskProbabilityLow        = "low"
	RiskProbabilityModerate   = "moderate"
	RiskProbabilityHigh       = "high"
	RiskProbabilityCertain    = "certain"
)

// SNOMED CT concept for the predicted outcome.
const (
	SNOMEDSystem            = "http://snomed.info/sct"
	SNOMEDAlzheimersDisease = "26929004"
	SNOMEDAlzheimersDisplay = "Alzheimer's disease"
)

// AdministrativeGender codes.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Identifier and method systems owned by this service.
const (
	PatientIdentifierSystem = "urn:alzrisk:patient-id"
	MethodSystem            = "urn:alzrisk:method"
	MethodCodeModel         = "alzheimers-risk-model"
	MethodDisplayModel      = "Alzheimer's disease risk prediction model"
	RiskFactorSystem        = "urn:alzrisk:risk-factor"
)
