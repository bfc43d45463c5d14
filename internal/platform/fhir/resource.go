package fhir

import (
	"fmt"
	"net/http"
	"time"
)

type Meta struct {
	VersionID   string    `json:"versionId,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
	Profile     []string  `json:"profile,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

type Annotation struct {
	Text string `json:"text"`
}

func FormatReference(resourceType, id string) string {
	return fmt.Sprintf("%s/%s", resourceType, id)
}

// OperationOutcome severity levels.
const (
	IssueSeverityError   = "error"
	IssueSeverityWarning = "warning"
)

// OperationOutcome issue type codes.
const (
	IssueTypeInvalid    = "invalid"
	IssueTypeProcessing = "processing"
	IssueTypeTransient  = "transient"
	IssueTypeSecurity   = "security"
	IssueTypeTimeout    = "timeout"
	IssueTypeTooCostly  = "too-costly"
)

type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Expression  []string         `json:"expression,omitempty"`
}

func NewOperationOutcome(severity, code, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{
				Severity:    severity,
				Code:        code,
				Diagnostics: diagnostics,
			},
		},
	}
}

func ErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeProcessing, diagnostics)
}

// OutcomeForStatus picks the issue code that matches an HTTP error status.
func OutcomeForStatus(status int, diagnostics string) *OperationOutcome {
	code := IssueTypeProcessing
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = IssueTypeInvalid
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = IssueTypeSecurity
	case status == http.StatusRequestEntityTooLarge:
		code = IssueTypeTooCostly
	case status == http.StatusGatewayTimeout:
		code = IssueTypeTimeout
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		code = IssueTypeTransient
	}
	return NewOperationOutcome(IssueSeverityError, code, diagnostics)
}
