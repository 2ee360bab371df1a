package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/cli"
	"github.com/aretw0/sideeye/internal/presentation/tui"
	httpAdapter "github.com/aretw0/sideeye/pkg/adapters/http"
	"github.com/aretw0/sideeye/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes trial building, stored trials, items, Prometheus metrics and a live event stream over HTTP.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addBuildFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := loadSetup(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	streams := httpAdapter.NewStreamManager(s.logger)

	if err := s.open(nil, metrics.Hooks(), streams.Hooks()); err != nil {
		return err
	}
	defer s.close()

	handler, err := httpAdapter.NewHandler(s.analyzer,
		httpAdapter.WithStreams(streams),
		httpAdapter.WithGatherer(reg),
		httpAdapter.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}

	port := s.cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tui.PrintBanner(os.Stderr, strings.TrimSpace(sideeye.Version))

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting sideeye server", "address", srv.Addr, "items", s.cfg.Items.Path, "store", s.cfg.Store.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("Start shutdown", "signal", ctx.Signal())

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		s.logger.Info("sideeye server stopped gracefully")
		return nil
	}
}
