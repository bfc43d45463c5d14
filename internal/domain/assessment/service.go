package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/alzrisk/internal/domain/patient"
	"github.com/ehr/alzrisk/internal/domain/risk"
	"github.com/ehr/alzrisk/internal/platform/predictor"
	"github.com/ehr/alzrisk/internal/platform/telemetry"
)

// Predictor scores a record. *predictor.Client satisfies it.
type Predictor interface {
	Predict(ctx context.Context, record *patient.Record) (float64, error)
	Status(ctx context.Context) (*predictor.ServiceStatus, error)
}

// Metrics receives prediction outcomes. *telemetry.Provider satisfies it.
type Metrics interface {
	ObservePrediction(outcome string, d time.Duration)
	ObserveCategory(category string)
	ObserveOutOfRange()
}

type nopMetrics struct{}

func (nopMetrics) ObservePrediction(string, time.Duration) {}
func (nopMetrics) ObserveCategory(string)                  {}
func (nopMetrics) ObserveOutOfRange()                      {}

type Service struct {
	predictor Predictor
	logger    zerolog.Logger
	metrics   Metrics
	validate  bool
	now       func() time.Time
}

// NewService builds a Service that validates records before scoring them.
func NewService(p Predictor, logger zerolog.Logger) *Service {
	return &Service{
		predictor: p,
		logger:    logger,
		metrics:   nopMetrics{},
		validate:  true,
		now:       time.Now,
	}
}

// SetMetrics attaches a metrics sink. A nil sink disables metrics.
func (s *Service) SetMetrics(m Metrics) {
	if m == nil {
		m = nopMetrics{}
	}
	s.metrics = m
}

// SetValidation toggles clinical range checks on incoming records.
func (s *Service) SetValidation(on bool) {
	s.validate = on
}

// Assess scores one record and classifies the score. A missing PatientID is
// filled in. Predictor failures come back unchanged so callers can inspect
// them with errors.Is and errors.As.
func (s *Service) Assess(ctx context.Context, record *patient.Record) (*Result, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: empty body", patient.ErrInvalidRecord)
	}
	if record.PatientID == "" {
		record.PatientID = patient.NewID()
	}
	if s.validate {
		if err := record.Validate(); err != nil {
			return nil, err
		}
	}

	log := s.logger.With().Str("patient_id", record.PatientID).Logger()

	start := time.Now()
	score, err := s.predictor.Predict(ctx, record)
	elapsed := time.Since(start)
	if err != nil {
		kind := predictor.Kind(err)
		s.metrics.ObservePrediction(kind, elapsed)
		evt := log.Error().Err(err).Str("error_kind", kind).Dur("elapsed", elapsed)
		if code := predictor.StatusCode(err); code != 0 {
			evt = evt.Int("upstream_status", code)
		}
		evt.Msg("prediction failed")
		return nil, err
	}
	s.metrics.ObservePrediction(telemetry.OutcomeOK, elapsed)

	if score < 0 || score > 1 || math.IsNaN(score) {
		s.metrics.ObserveOutOfRange()
		log.Warn().Float64("score", score).Msg("model returned score outside [0,1]")
	}

	res := &Result{
		ID:          uuid.New(),
		PatientID:   record.PatientID,
		Assessment:  risk.Evaluate(score),
		RiskFactors: record.RiskFactors(),
		Disclaimer:  risk.Disclaimer,
		AssessedAt:  s.now().UTC(),
		gender:      string(record.Gender),
	}
	s.metrics.ObserveCategory(res.Category.String())

	log.Info().
		Str("assessment_id", res.ID.String()).
		Str("category", res.Category.String()).
		Dur("elapsed", elapsed).
		Msg("assessment complete")
	return res, nil
}

// Classify applies the thresholds to a score without calling the model.
func (s *Service) Classify(score float64) risk.Assessment {
	return risk.Evaluate(score)
}

// Categories lists the risk bands in severity order.
func (s *Service) Categories() []CategoryInfo {
	cats := risk.Categories()
	out := make([]CategoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryInfo(c))
	}
	return out
}

func (s *Service) NewPatientID() string {
	return patient.NewID()
}

// Upstream reports the model service status. A reachable service with an
// unloaded model is reported as ErrModelNotLoaded.
func (s *Service) Upstream(ctx context.Context) (*predictor.ServiceStatus, error) {
	st, err := s.predictor.Status(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("error_kind", predictor.Kind(err)).Msg("model service status check failed")
		return nil, err
	}
	if !st.ModelLoaded() {
		return st, ErrModelNotLoaded
	}
	return st, nil
}

var ErrModelNotLoaded = errors.New("model not loaded")
