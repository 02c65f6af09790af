package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/versebench/versebench/internal/benchmark"
	"github.com/versebench/versebench/internal/config"
	"github.com/versebench/versebench/internal/eval/dataset"
	"github.com/versebench/versebench/internal/handlers"
	"github.com/versebench/versebench/internal/storage"
	"github.com/versebench/versebench/internal/transform"
)

func newServeCmd() *cobra.Command {
	var port string
	var responses string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the benchmark JSON API",
		Long: `Starts the Versebench API on the specified port.

The API scores, parses and hashes ad hoc text, lists and summarizes stored
runs, and, when a corpus is configured (VERSEBENCH_CORPUS), starts and cancels
new runs against the configured provider. A profile file set with
VERSEBENCH_PROFILES is reloaded whenever it changes on disk.`,
		Example: `  # Start server on default port 8888
  versebench serve

  # Start server on custom port with a persistent run store
  VERSEBENCH_DB=./runs.db versebench serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			if port == "" {
				port = cfg.Port
			}

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer store.Close()

			registry := transform.NewRegistry(nil)
			if cfg.ProfilesPath != "" {
				set, err := transform.LoadProfiles(cfg.ProfilesPath)
				if err != nil {
					return fmt.Errorf("failed to load profiles: %w", err)
				}
				registry.Replace(set)

				watcher, err := transform.NewWatcher(cfg.ProfilesPath, registry, slog.Default())
				if err != nil {
					return err
				}
				go func() {
					if err := watcher.Run(ctx); err != nil {
						slog.Error("Profile watcher stopped", "err", err)
					}
				}()
			}

			opts := handlers.Options{
				Store:       store,
				Profiles:    registry,
				Thresholds:  cfg.Thresholds,
				LatestOnly:  cfg.LatestOnly,
				Provider:    cfg.Provider,
				Model:       cfg.Model,
				BaseContext: ctx,
			}
			if cfg.CorpusPath != "" {
				runner, corpus, err := newServeRunner(ctx, cfg, store, registry, responses)
				if err != nil {
					slog.Warn("Runs are disabled", "err", err)
				} else {
					opts.Runner = runner
					opts.Corpus = corpus
				}
			}

			handler := handlers.New(opts)

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Versebench API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default $VERSEBENCH_PORT or 8888)")
	cmd.Flags().StringVar(&responses, "responses", "", "YAML file of recorded responses when the provider is static")

	return cmd
}

func newServeRunner(ctx context.Context, cfg config.Config, store storage.Store, registry *transform.Registry, responses string) (*benchmark.Runner, []dataset.CanonicalVerseRecord, error) {
	loader, err := dataset.Open(ctx, cfg.CorpusPath, dataset.DownloadConfig{
		CacheDir: cfg.CacheDir,
		Token:    cfg.CorpusToken,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	corpus, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	provider, err := benchmark.NewProvider(cfg.Provider, cfg, responses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	slog.Info("Runs enabled", "provider", cfg.Provider, "model", cfg.Model, "verses", len(corpus))
	runner := benchmark.NewRunner(provider, store,
		benchmark.WithProfiles(registry),
		benchmark.WithThresholds(cfg.Thresholds),
		benchmark.WithLogger(slog.Default()),
	)
	return runner, corpus, nil
}
