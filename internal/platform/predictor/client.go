// Package predictor talks to the remote model service that scores a patient
// record. One call is one POST; there is no retry, caching or shared state
// between calls.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ehr/alzrisk/internal/domain/patient"
)

const (
	PredictPath = "/predict"
	StatusPath  = "/"

	// DefaultBaseURL is where the model service listens in local setups.
	DefaultBaseURL = "http://127.0.0.1:5000"
)

// Config is injected by the caller; nothing in this package reads the
// environment.
type Config struct {
	BaseURL string
	// Timeout bounds each call. Zero leaves the transport default in place.
	Timeout   time.Duration
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call debug records.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying *http.Client, e.g. for a custom
// transport in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client is safe for concurrent use; calls do not interact.
type Client struct {
	baseURL    string
	rest       *resty.Client
	httpClient *http.Client
	logger     zerolog.Logger
}

// New validates the base URL and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse prediction base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("prediction base url must be http or https, got %q", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("prediction base url has no host: %q", base)
	}

	c := &Client{
		baseURL: base,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	var rc *resty.Client
	if c.httpClient != nil {
		rc = resty.NewWithClient(c.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetLogger(restyLogger{c.logger}).
		SetCookieJar(nil).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}
	c.rest = rc
	return c, nil
}

// BaseURL returns the normalized base URL the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
}

// Predict sends record to the model and returns the raw score. The score is
// not range-checked. Failures are *NetworkError, *TransportError or
// *ProtocolError, all matching ErrUnavailable.
func (c *Client) Predict(ctx context.Context, record *patient.Record) (float64, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encode patient record: %w", err)
	}

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		Post(PredictPath)
	if err != nil {
		c.logger.Debug().Err(err).Str("patient_id", record.PatientID).Dur("latency", time.Since(start)).Msg("prediction request failed")
		return 0, &NetworkError{Op: http.MethodPost, URL: c.baseURL + PredictPath, Err: err}
	}

	c.logger.Debug().
		Str("patient_id", record.PatientID).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("prediction response")

	if !resp.IsSuccess() {
		return 0, &TransportError{StatusCode: resp.StatusCode(), Status: resp.Status(), URL: c.baseURL + PredictPath}
	}

	return decodePrediction(resp.Body())
}

func decodePrediction(body []byte) (float64, error) {
	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, &ProtocolError{Reason: "body is not a JSON object with a numeric prediction", Err: err}
	}
	if out.Prediction == nil {
		return 0, &ProtocolError{Reason: `missing "prediction" field`}
	}
	return *out.Prediction, nil
}

// ServiceStatus is what the model service reports on its root endpoint.
type ServiceStatus struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	ModelStatus string `json:"model_status,omitempty"`
	Version     string `json:"version,omitempty"`
}

// ModelLoaded reports whether the service says its model is ready.
func (s *ServiceStatus) ModelLoaded() bool {
	return s.ModelStatus == "loaded"
}

// Status queries the service root. It uses the same error taxonomy as Predict.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(StatusPath)
	if err != nil {
		return nil, &NetworkError{Op: http.MethodGet, URL: c.baseURL + StatusPath, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &TransportError{StatusCode: resp.StatusCode(), Status: resp.Status(), URL: c.baseURL + StatusPath}
	}

	var st ServiceStatus
	if err := json.Unmarshal(resp.Body(), &st); err != nil {
		return nil, &ProtocolError{Reason: "status body is not JSON", Err: err}
	}
	return &st, nil
}
