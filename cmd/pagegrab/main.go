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

	"github.com/use-agent/pagegrab/api"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))
	slog.Info("pagegrab starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"staticTimeout", cfg.Scraper.StaticTimeout,
		"dynamicTimeout", cfg.Scraper.DynamicTimeout,
	)

	// ── 3. Cache + engines ──────────────────────────────────────────
	sc := scraper.NewFromConfig(cfg)
	slog.Info("scraper ready", "cache", sc.CacheEnabled(), "dedupe", cfg.Scraper.Dedupe)

	// ── 4. Router + HTTP server ─────────────────────────────────────
	router := api.NewRouter(sc, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 5. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// A browser render can take the whole dynamic timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.DynamicTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := sc.Close(); err != nil {
		slog.Warn("cache close failed", "error", err)
	}
	slog.Info("pagegrab stopped")
}
