package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"volumegen/internal/config"
	"volumegen/internal/metrics"
)

// pushTimeout bounds the Pushgateway request after the run has finished.
const pushTimeout = 10 * time.Second

func newRootCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:           "volumegen",
		Short:         "Compute product volumes from the supplier catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithFlags(cmd.Flags())
			if err != nil {
				return &configError{err: err}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg, quiet)
		},
	}

	flags := cmd.Flags()
	flags.String("source", "", "Catalog URL, s3://bucket/key or local path (overrides CSV_URL)")
	flags.String("output", "", "Output JSON path (default volumes.json)")
	flags.String("format", "", "Source format: auto, csv or xlsx")
	flags.String("projection", "", "Output shape: compact or full")
	flags.String("csv", "", "Also write a CSV export to this path")
	flags.String("unit", "", "Volume unit: cm3, l or m3")
	flags.String("log-level", "", "Log level: info or debug")
	flags.Bool("no-filter", false, "Keep records with zero or invalid dimensions")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print the run summary")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &configError{err: err}
	})
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, quiet bool) error {
	ctx := cmd.Context()

	runID := uuid.New().String()
	prevPrefix := log.Prefix()
	log.SetPrefix(fmt.Sprintf("[%s] ", runID))
	defer log.SetPrefix(prevPrefix)

	log.Printf("volumegen: starting run (source=%s, format=%s, unit=%s, filter=%t)",
		cfg.Source.URL, cfg.Source.Format, cfg.Volume.Unit, cfg.Filter.Enabled)

	collector := metrics.NewCollector()
	p, err := buildPipeline(ctx, cfg, collector)
	if err != nil {
		return err
	}

	report, runErr := p.Run(ctx)
	pushMetrics(collector, &cfg.Metrics)
	if runErr != nil {
		return runErr
	}

	log.Printf("volumegen: run complete, %d record(s) written in %s", report.RowsWritten, report.Duration.Round(time.Millisecond))
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report))
	}
	return nil
}

func pushMetrics(collector *metrics.Collector, cfg *config.MetricsConfig) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := collector.Push(ctx, cfg.PushgatewayURL, cfg.Job); err != nil {
		log.Printf("volumegen: WARN: %v", err)
	}
}
