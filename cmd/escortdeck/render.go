package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/pipeline"
)

func newRenderCmd() *cobra.Command {
	var synthesisPath, countryPath, scopePath, outPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single-country escort deck from a synthesis document",
		RunE: func(cmd *cobra.Command, args []string) error {
			synthesis, err := readSynthesis(synthesisPath)
			if err != nil {
				return fmt.Errorf("read --synthesis: %w", err)
			}
			analysis, err := readCountryAnalysis(countryPath)
			if err != nil {
				return fmt.Errorf("read --country: %w", err)
			}
			scope, err := readScope(scopePath)
			if err != nil {
				return fmt.Errorf("read --scope: %w", err)
			}

			cfg, err := config.Parse(os.Getenv)
			if err != nil {
				return fmt.Errorf("parse environment config: %w", err)
			}

			logger, err := zap.NewProduction()
			if err != nil {
				logger = zap.NewNop()
			}
			defer logger.Sync()

			result, err := pipeline.Generate(context.Background(), synthesis, analysis, scope, cfg, logger)
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, result.PPTX, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}

			metricsJSON, _ := json.MarshalIndent(result.Metrics, "", "  ")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n%s\n", outPath, metricsJSON)
			return nil
		},
	}

	cmd.Flags().StringVar(&synthesisPath, "synthesis", "", "path to synthesis.json (required)")
	cmd.Flags().StringVar(&countryPath, "country", "", "path to country.json (required)")
	cmd.Flags().StringVar(&scopePath, "scope", "", "path to scope.json (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "out.pptx", "output .pptx path")
	cmd.MarkFlagRequired("synthesis")
	cmd.MarkFlagRequired("country")
	cmd.MarkFlagRequired("scope")

	return cmd
}

func readSynthesis(path string) (pipeline.Synthesis, error) {
	var s pipeline.Synthesis
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	_ = json.Unmarshal(data, &s.Raw)
	return s, nil
}

func readCountryAnalysis(path string) (pipeline.CountryAnalysis, error) {
	var a pipeline.CountryAnalysis
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	err = json.Unmarshal(data, &a)
	return a, err
}

func readScope(path string) (pipeline.Scope, error) {
	var s pipeline.Scope
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}
