// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/example/session-registration/internal/certificate"
	"github.com/example/session-registration/internal/config"
	"github.com/example/session-registration/internal/handler"
	"github.com/example/session-registration/internal/repository"
	"github.com/example/session-registration/internal/service"
	"github.com/example/session-registration/internal/store"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "regserver",
		Short:        "Session registration web application",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:          "seed",
		Short:        "Create the data directory and seed the session catalogue",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	})
	return root
}

// newStore converts the configured seed rows into store rows, keeping the
// seeded price text exactly as configured.
func newStore(cfg config.Config) *store.Store {
	seed := make([]store.Row, 0, len(cfg.SeedSessions))
	for _, s := range cfg.SeedSessions {
		seed = append(seed, store.Row{
			"id":       s.ID,
			"name":     s.Name,
			"date":     s.Date,
			"capacity": strconv.Itoa(s.Capacity),
			"price":    s.Price,
		})
	}
	return store.New(cfg.DataDir, seed)
}

func runSeed() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	st := newStore(cfg)
	if err := st.Init(); err != nil {
		return fmt.Errorf("init data dir: %w", err)
	}
	slog.Info("data directory ready", "dir", cfg.DataDir, "sessions", len(cfg.SeedSessions))
	return nil
}

func runServe() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// ── 1. Open the record store ─────────────────────────────────────────
	st := newStore(cfg)
	if err := st.Init(); err != nil {
		return fmt.Errorf("init data dir: %w", err)
	}
	logger.Info("record store ready", "dir", cfg.DataDir)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(st)
	participantRepo := repository.NewParticipantRepository(st)
	paymentRepo := repository.NewPaymentRepository(st)
	svc := service.NewRegistrationService(sessionRepo, participantRepo, paymentRepo)
	renderer := certificate.NewRenderer(cfg.FontPaths)
	h, err := handler.NewRegistrationHandler(svc, renderer, logger)
	if err != nil {
		return fmt.Errorf("handlers: %w", err)
	}

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(h, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
