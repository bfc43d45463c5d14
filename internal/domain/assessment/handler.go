package assessment

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/alzrisk/internal/domain/patient"
	"github.com/ehr/alzrisk/internal/platform/auth"
	"github.com/ehr/alzrisk/internal/platform/fhir"
	"github.com/ehr/alzrisk/internal/platform/predictor"
)

// UnavailableMessage is the only detail callers get about an upstream failure.
const UnavailableMessage = "prediction service unavailable"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	api.GET("/risk-categories", h.ListCategories)
	api.GET("/patient-id", h.NewPatientID)
	api.GET("/patient-template", h.PatientTemplate)
	api.POST("/classify", h.Classify)

	clinician := api.Group("", auth.RequireRole(auth.RoleClinician))
	clinician.POST("/assessments", h.CreateAssessment)

	fhirGroup.POST("/RiskAssessment/$predict", h.PredictFHIR, auth.RequireRole(auth.RoleClinician))
}

func (h *Handler) CreateAssessment(c echo.Context) error {
	record, err := readRecord(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Assess(c.Request().Context(), record)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) PredictFHIR(c echo.Context) error {
	record, err := readRecord(c)
	if err != nil {
		return fhirError(c, err)
	}
	res, err := h.svc.Assess(c.Request().Context(), record)
	if err != nil {
		return fhirError(c, httpError(err))
	}
	return c.JSON(http.StatusOK, res.ToFHIR())
}

func (h *Handler) Classify(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Score == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "score is required")
	}
	if math.IsNaN(*req.Score) || math.IsInf(*req.Score, 0) {
		return echo.NewHTTPError(http.StatusBadRequest, "score must be a finite number")
	}
	return c.JSON(http.StatusOK, h.svc.Classify(*req.Score))
}

func (h *Handler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Categories())
}

func (h *Handler) NewPatientID(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"patient_id": h.svc.NewPatientID()})
}

// PatientTemplate returns the intake form defaults with a fresh PatientID.
func (h *Handler) PatientTemplate(c echo.Context) error {
	return c.JSON(http.StatusOK, patient.Template())
}

// UpstreamHealth reports whether the model service is reachable and loaded.
func (h *Handler) UpstreamHealth(c echo.Context) error {
	st, err := h.svc.Upstream(c.Request().Context())
	switch {
	case errors.Is(err, ErrModelNotLoaded):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":       "degraded",
			"model_status": st.ModelStatus,
		})
	case err != nil:
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  predictor.Kind(err),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":       "ok",
		"model_status": st.ModelStatus,
		"version":      st.Version,
	})
}

func readRecord(c echo.Context) (*patient.Record, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}
	record, err := patient.Decode(body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return record, nil
}

func httpError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, patient.ErrInvalidRecord):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, predictor.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, UnavailableMessage)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func fhirError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	return c.JSON(status, fhir.OutcomeForStatus(status, msg))
}
