package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/historyGames/internal/config"
	"github.com/letsssgooo/historyGames/internal/extract"
	"github.com/letsssgooo/historyGames/internal/history"
	"github.com/letsssgooo/historyGames/internal/httpapi"
	"github.com/letsssgooo/historyGames/internal/lib/slogcustom"
	"github.com/letsssgooo/historyGames/internal/metrics"
	"github.com/letsssgooo/historyGames/internal/session"
	"github.com/letsssgooo/historyGames/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	slog.Info("starting history games...", slog.String("storage", cfg.StorageEngine))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	kv, err := storage.NewByEngine(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("can not open storage, %w", err)
	}
	defer kv.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met := metrics.New(reg)

	store := history.New(kv, log, history.WithMetrics(met))
	met.SetHistorySize(len(store.List(ctx)))

	extractor := extract.New(extract.Config{
		BaseURL:      cfg.LLMBaseURL,
		APIKey:       cfg.GeminiAPIKey,
		Models:       cfg.LLMModels,
		Timeout:      cfg.LLMTimeout,
		MaxTextRunes: cfg.MaxTextRunes,
	}, log, met)

	sessions := session.NewManager(session.Deps{
		Extractor: extractor,
		History:   store,
		Log:       log.With(slog.String("component", "session")),
		Metrics:   met,
	}, cfg.SessionTTL)
	defer sessions.Close()
	go sessions.Run(ctx, cfg.SweepInterval)

	server := httpapi.New(httpapi.Config{
		AllowOrigins:     cfg.AllowOrigins,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		AnalyzeRateLimit: cfg.AnalyzeRateLimit,
		RequestLog:       os.Stdout,
	}, sessions, store, reg, log.With(slog.String("component", "http")))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped, %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("can not stop http server, %w", err)
	}
	return nil
}

func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})), nil
	}
	return slog.New(slogcustom.NewCustomHandler(os.Stdout, level)), nil
}
