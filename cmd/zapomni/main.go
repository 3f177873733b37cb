// Command zapomni runs the chat backend for the Telegram Mini App: an HTTP
// service that proxies an LLM and maintains a per-user knowledge base of
// characters, events, topics, and relationships.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/ebelyakova/zapomni/internal/chat"
	"github.com/ebelyakova/zapomni/internal/config"
	"github.com/ebelyakova/zapomni/internal/extract"
	"github.com/ebelyakova/zapomni/internal/health"
	"github.com/ebelyakova/zapomni/internal/knowledge"
	"github.com/ebelyakova/zapomni/internal/knowledge/memstore"
	"github.com/ebelyakova/zapomni/internal/knowledge/postgres"
	"github.com/ebelyakova/zapomni/internal/observe"
	"github.com/ebelyakova/zapomni/internal/server"
	"github.com/ebelyakova/zapomni/pkg/provider/llm"
	"github.com/ebelyakova/zapomni/pkg/provider/llm/anyllm"
	"github.com/ebelyakova/zapomni/pkg/provider/llm/openai"
)

const version = "0.3.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// A missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	meterProvider, err := observe.InitProvider("zapomni", version)
	if err != nil {
		log.Error("init metrics provider", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown metrics provider", "error", err)
		}
	}()
	metrics, err := observe.NewMetrics()
	if err != nil {
		log.Error("create metrics", "error", err)
		return 1
	}

	store, checkers, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error("init knowledge store", "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("close knowledge store", "error", err)
		}
	}()

	provider, err := newProvider(cfg.LLM)
	if err != nil {
		log.Error("init llm provider", "error", err)
		return 1
	}

	opts := []chat.Option{
		chat.WithMetrics(metrics),
		chat.WithTemperature(cfg.LLM.Temperature),
		chat.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if cfg.Extraction.HeuristicEnabled {
		opts = append(opts, chat.WithHeuristicExtractor(
			extract.NewHeuristic(nilIfEmpty(cfg.Extraction.Stopwords), nilIfEmpty(cfg.Extraction.EventKeywords))))
	}
	if cfg.Extraction.LLMEnabled {
		opts = append(opts, chat.WithLLMExtractor(extract.NewLLM(provider)))
	}
	svc := chat.NewService(store, provider, log, opts...)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.New(svc, health.NewHandler(checkers), metrics, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.ListenAddr, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown http server", "error", err)
			return 1
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			return 1
		}
	}
	return 0
}

// newLogger builds the process-wide structured logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newStore picks PostgreSQL when a DSN is configured, otherwise the
// in-memory store for local development.
func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (knowledge.Store, map[string]health.Checker, error) {
	if cfg.Store.PostgresDSN == "" {
		log.Warn("no postgres_dsn configured, using in-memory store; data is lost on restart")
		return memstore.New(), nil, nil
	}

	pg, err := postgres.NewStore(ctx, cfg.Store.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	checkers := map[string]health.Checker{
		"postgres": health.CheckerFunc(pg.Ping),
	}
	return pg, checkers, nil
}

// newProvider builds the LLM backend from configuration.
func newProvider(cfg config.LLMConfig) (llm.Provider, error) {
	if cfg.Provider == "openai" {
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	}

	var opts []anyllmlib.Option
	if cfg.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}
	return anyllm.New(cfg.Provider, cfg.Model, opts...)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
