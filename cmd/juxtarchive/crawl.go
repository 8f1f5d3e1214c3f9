package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/crawler"
	"github.com/juxtarchive/juxtarchive/internal/database"
	"github.com/juxtarchive/juxtarchive/internal/extract"
	"github.com/juxtarchive/juxtarchive/internal/log"
	"github.com/juxtarchive/juxtarchive/internal/refresh"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Archive the platform in an endless incremental loop",
		Long: `Crawl walks every community on the platform and archives posts,
replies, and user profiles into the local database.

Each community is scanned from its newest item down to where the previous
pass started, so a steady-state pass only touches what changed. The loop
runs until interrupted; progress survives restarts because the per-community
cursors live in the database.

While crawling, a UDP listener accepts refresh requests from the query
server so records that visitors are viewing get re-fetched promptly.

Examples:
  # Crawl a platform into the default database location
  juxtarchive crawl --url https://archive.example.com

  # Crawl into a specific directory with verbose logging
  juxtarchive crawl --url https://archive.example.com -d ./data -v`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("url", "u", "", "Platform base URL to archive (required unless set in config file)")
	cmd.Flags().String("refresh", config.DefaultRefreshAddr, "UDP listen address for refresh requests")
	cmd.Flags().Int("page-size", config.DefaultPageSize, "Listing page stride")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Per-request timeout for platform fetches")
	addCommonFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	refreshAddr, err := cmd.Flags().GetString("refresh")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("refresh") && cfg.RefreshAddr != "" {
		refreshAddr = cfg.RefreshAddr
	}

	cfg.PageSize, err = cmd.Flags().GetInt("page-size")
	if err != nil {
		return err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, log.ServiceCrawler, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	client, err := extract.NewClient(cfg.BaseURL,
		extract.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		extract.WithUserAgent(cfg.UserAgent),
		extract.WithMaxImageBytes(cfg.MaxImageBytes),
		extract.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create platform client: %w", err)
	}

	listener, err := refresh.NewListener(refreshAddr, refresh.WithListenerLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to start refresh listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			logger.Error("failed to close refresh listener", "error", err)
		}
	}()

	logger.Info("starting crawl",
		"url", cfg.BaseURL,
		"db", cfg.DBDir,
		"refresh", listener.Addr().String(),
	)

	scanner := crawler.NewScanner(client, db,
		crawler.WithPageSize(cfg.PageSize),
		crawler.WithRefreshChannel(listener.Requests()),
		crawler.WithLogger(logger),
	)

	if err := scanner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl failed: %w", err)
	}

	logger.Info("crawl stopped")
	return nil
}
