package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/alzrisk/internal/config"
	"github.com/ehr/alzrisk/internal/domain/assessment"
	"github.com/ehr/alzrisk/internal/domain/patient"
	"github.com/ehr/alzrisk/internal/domain/risk"
	"github.com/ehr/alzrisk/internal/platform/predictor"
)

// userFailureMessage is shown when the model service cannot produce a score.
const userFailureMessage = "Failed to get prediction. Please try again later."

type predictOutput struct {
	PatientID string `json:"patient_id"`
	risk.Assessment
	RiskFactors []string `json:"risk_factors"`
	Disclaimer  string   `json:"disclaimer"`
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a patient record with the model service and print the assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			baseURL, _ := cmd.Flags().GetString("url")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := zerolog.Nop()
			if verbose {
				logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
			}
			client, err := newPredictor(cfg, baseURL, logger)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			return runPredict(cmd, client, data)
		},
	}
	cmd.Flags().StringP("file", "f", "-", "patient record JSON file, or - for stdin")
	cmd.Flags().String("url", "", "model service base URL (default PREDICTION_URL)")
	cmd.Flags().BoolP("verbose", "v", false, "log the outbound call to stderr")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return data, nil
}

// runPredict walks the intake flow for one record: form, submit, then results
// or back to the form on failure.
func runPredict(cmd *cobra.Command, p assessment.Predictor, data []byte) error {
	flow := assessment.NewFlow()
	if err := flow.Start(); err != nil {
		return err
	}

	record, err := patient.Decode(data)
	if err != nil {
		return fmt.Errorf("stage %s: %w", flow.Stage(), err)
	}
	if record.PatientID == "" {
		record.PatientID = patient.NewID()
	}

	if err := flow.Submit(); err != nil {
		return err
	}
	score, err := p.Predict(cmd.Context(), record)
	if err != nil {
		_ = flow.Fail(err)
		fmt.Fprintln(cmd.ErrOrStderr(), userFailureMessage)
		return fmt.Errorf("%s failed, back to %s: %s error: %w", assessment.StageSubmitting, flow.Stage(), predictor.Kind(err), err)
	}
	if err := flow.Succeed(score); err != nil {
		return err
	}

	out := predictOutput{
		PatientID:   record.PatientID,
		Assessment:  risk.Evaluate(flow.Score()),
		RiskFactors: record.RiskFactors(),
		Disclaimer:  risk.Disclaimer,
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <score>",
		Short: "Print the risk category for a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("score must be a number: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), risk.Evaluate(score))
		},
	}
}

func newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-id",
		Short: "Print a fresh patient identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), patient.NewID())
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the model service status endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("url")
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client, err := newPredictor(cfg, baseURL, zerolog.Nop())
			if err != nil {
				return err
			}
			st, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s error: %w", predictor.Kind(err), err)
			}
			if err := writeJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if !st.ModelLoaded() {
				return errors.New("model service is up but the model is not loaded")
			}
			return nil
		},
	}
	cmd.Flags().String("url", "", "model service base URL (default PREDICTION_URL)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
