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
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/database"
	"github.com/juxtarchive/juxtarchive/internal/log"
	"github.com/juxtarchive/juxtarchive/internal/refresh"
	"github.com/juxtarchive/juxtarchive/internal/server"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive over a JSON HTTP API",
		Long: `Serve answers queries against the archived data: point lookups,
searches by author, community, keyword, or image hash, and reverse image
search by perceptual similarity.

When a visitor looks up a specific post, reply, or user, the server sends
a fire-and-forget refresh hint to the crawler so the record's counters
catch up with the platform. The server works fine without a running
crawler; the hints just go nowhere.

Examples:
  # Serve the default database on the default port
  juxtarchive serve

  # Serve a specific database on a custom address
  juxtarchive serve -d ./data --listen :8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().String("refresh", config.DefaultRefreshAddr, "UDP address of the crawler's refresh listener")
	cmd.Flags().Int("ui-limit", config.DefaultUIResultLimit, "Default search result cap")
	cmd.Flags().Int("api-limit", config.DefaultAPIResultLimit, "Maximum explicit search result cap")
	addCommonFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("listen") || cfg.ListenAddr == "" {
		cfg.ListenAddr, err = cmd.Flags().GetString("listen")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("refresh") || cfg.RefreshAddr == "" {
		cfg.RefreshAddr, err = cmd.Flags().GetString("refresh")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("ui-limit") {
		cfg.UIResultLimit, err = cmd.Flags().GetInt("ui-limit")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("api-limit") {
		cfg.APIResultLimit, err = cmd.Flags().GetInt("api-limit")
		if err != nil {
			return err
		}
	}
	if cfg.UIResultLimit <= 0 || cfg.APIResultLimit <= 0 {
		return config.ErrInvalidResultLimit
	}

	logger := log.NewLogger(os.Stderr, log.ServiceServer, cfg.Verbose)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	requester, err := refresh.NewRequester(cfg.RefreshAddr)
	if err != nil {
		return fmt.Errorf("failed to set up refresh requester: %w", err)
	}
	defer func() {
		if err := requester.Close(); err != nil {
			logger.Error("failed to close refresh requester", "error", err)
		}
	}()

	srv := server.New(db,
		server.WithRefresher(requester),
		server.WithResultLimits(cfg.UIResultLimit, cfg.APIResultLimit),
		server.WithMaxUploadSize(cfg.MaxUploadSize),
		server.WithSimilarityLimit(cfg.SimilarityLimit),
		server.WithLogger(logger),
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving archive", "listen", cfg.ListenAddr, "db", cfg.DBDir, "refresh", cfg.RefreshAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
