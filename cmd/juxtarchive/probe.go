package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/extract"
	"github.com/juxtarchive/juxtarchive/internal/log"
	"github.com/juxtarchive/juxtarchive/internal/probe"
	"github.com/juxtarchive/juxtarchive/internal/report"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Estimate community sizes without crawling",
		Long: `Probe estimates how many items each community lists by binary-searching
the listing offset instead of walking every page. An estimate costs a few
dozen requests where a full crawl would cost one request per page.

Use it to size archiving work before committing to a crawl.

Examples:
  # Probe all communities, print a text table
  juxtarchive probe --url https://archive.example.com

  # Emit a JSON report
  juxtarchive probe --url https://archive.example.com --json

  # Write a Markdown report to a file
  juxtarchive probe --url https://archive.example.com --markdown -o sizes.md`,
		Args: cobra.NoArgs,
		RunE: runProbeCmd,
	}

	cmd.Flags().StringP("url", "u", "", "Platform base URL to probe (required unless set in config file)")
	cmd.Flags().Int("max-offset", config.DefaultProbeMaxOffset, "Upper bound of the offset search")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Per-request timeout for platform fetches")
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	addCommonFlags(cmd)

	return cmd
}

// runProbeCmd executes the probe command.
func runProbeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	cfg.ProbeMaxOffset, err = cmd.Flags().GetInt("max-offset")
	if err != nil {
		return err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, log.ServiceProbe, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := extract.NewClient(cfg.BaseURL,
		extract.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		extract.WithUserAgent(cfg.UserAgent),
		extract.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create platform client: %w", err)
	}

	estimator := probe.NewEstimator(client, cfg.BaseURL,
		probe.WithMaxOffset(cfg.ProbeMaxOffset),
		probe.WithLogger(logger),
	)

	result, err := estimator.EstimateAll(ctx)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	output, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	var writer report.Writer
	switch {
	case jsonOut:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownOut:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// openOutput resolves the report destination: stdout by default, or the
// given file path with parent directories created as needed.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
