// Package telemetry exposes the gateway's Prometheus metrics: HTTP server
// timings plus counters for upstream predictions and the risk categories
// they produced.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeNetwork   = "network"
	OutcomeTransport = "transport"
	OutcomeProtocol  = "protocol"
)

var defaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Config holds the metric namespace and build information.
type Config struct {
	Namespace      string
	ServiceVersion string
	// GoCollectors adds the runtime and process collectors.
	GoCollectors bool
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "alzrisk"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
}

// Provider owns a private registry so tests can build as many as they like.
type Provider struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	predictions        *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	categories         *prometheus.CounterVec
	outOfRange         prometheus.Counter
}

func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	reg := prometheus.NewRegistry()

	p := &Provider{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests served by the gateway.",
			Buckets:   defaultDurationBuckets,
		}, []string{"method", "route", "status"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "http_active_requests",
			Help:      "Requests currently being served.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "predictions_total",
			Help:      "Calls to the model service by outcome.",
		}, []string{"outcome"}),
		predictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Latency of calls to the model service.",
			Buckets:   defaultDurationBuckets,
		}),
		categories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "risk_category_total",
			Help:      "Classified assessments by risk category.",
		}, []string{"category"}),
		outOfRange: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "prediction_out_of_range_total",
			Help:      "Scores returned by the model outside [0,1].",
		}),
	}

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   cfg.Namespace,
		Name:        "build_info",
		Help:        "Build information.",
		ConstLabels: prometheus.Labels{"version": cfg.ServiceVersion},
	})
	buildInfo.Set(1)

	reg.MustRegister(p.requestDuration, p.activeRequests, p.predictions,
		p.predictionDuration, p.categories, p.outOfRange, buildInfo)
	if cfg.GoCollectors {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	// Pre-create label values so every series is exported from the start.
	for _, o := range []string{OutcomeOK, OutcomeNetwork, OutcomeTransport, OutcomeProtocol} {
		p.predictions.WithLabelValues(o)
	}
	return p
}

// Registry is exposed for tests.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// ObservePrediction records one upstream call.
func (p *Provider) ObservePrediction(outcome string, d time.Duration) {
	p.predictions.WithLabelValues(outcome).Inc()
	p.predictionDuration.Observe(d.Seconds())
}

// ObserveCategory records one classified result.
func (p *Provider) ObserveCategory(category string) {
	p.categories.WithLabelValues(category).Inc()
}

// ObserveOutOfRange counts a model score outside [0,1].
func (p *Provider) ObserveOutOfRange() {
	p.outOfRange.Inc()
}

// MetricsMiddleware records duration and in-flight count for every request.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.activeRequests.Inc()
			defer p.activeRequests.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			p.requestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// PrometheusHandler serves the registry in the text exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
