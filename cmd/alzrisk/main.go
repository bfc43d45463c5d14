package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/alzrisk/internal/config"
	"github.com/ehr/alzrisk/internal/domain/assessment"
	"github.com/ehr/alzrisk/internal/platform/auth"
	"github.com/ehr/alzrisk/internal/platform/fhir"
	"github.com/ehr/alzrisk/internal/platform/middleware"
	"github.com/ehr/alzrisk/internal/platform/openapi"
	"github.com/ehr/alzrisk/internal/platform/predictor"
	"github.com/ehr/alzrisk/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "alzrisk",
		Short:        "Alzheimer's disease risk assessment gateway and client",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(predictCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(newIDCmd())
	root.AddCommand(statusCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the risk assessment gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.ZerologLevel())
}

func newPredictor(cfg *config.Config, baseURL string, logger zerolog.Logger) (*predictor.Client, error) {
	if baseURL == "" {
		baseURL = cfg.PredictionURL
	}
	return predictor.New(predictor.Config{
		BaseURL:   baseURL,
		Timeout:   cfg.PredictionTimeout,
		UserAgent: "alzrisk/" + version,
	}, predictor.WithLogger(logger))
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	client, err := newPredictor(cfg, "", logger)
	if err != nil {
		return err
	}
	metrics := telemetry.NewProvider(telemetry.Config{ServiceVersion: version, GoCollectors: true})

	e := newServer(cfg, logger, client, metrics)

	addr := ":" + cfg.Port
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("prediction_url", client.BaseURL()).
			Str("auth_mode", cfg.ResolvedAuthMode()).
			Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires the gateway. It does not start listening.
func newServer(cfg *config.Config, logger zerolog.Logger, p assessment.Predictor, metrics *telemetry.Provider) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	if cfg.ResolvedAuthMode() == "hmac" {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	} else {
		e.Use(auth.DevAuthMiddleware())
	}

	svc := assessment.NewService(p, logger)
	svc.SetMetrics(metrics)
	svc.SetValidation(cfg.ValidateRecords)
	h := assessment.NewHandler(svc)

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	apiV1 := e.Group("/api/v1", rateLimit)
	fhirGroup := e.Group("/fhir", rateLimit, fhir.ContentNegotiationMiddleware())
	h.RegisterRoutes(apiV1, fhirGroup)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/upstream", h.UpstreamHealth)
	e.GET("/metrics", metrics.PrometheusHandler())
	openapi.NewGenerator(version, "/").RegisterRoutes(e)

	return e
}
