package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/floatchat/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/floatchat/internal/adapter/kafka"
	"github.com/couchcryptid/floatchat/internal/adapter/llm"
	"github.com/couchcryptid/floatchat/internal/compose"
	"github.com/couchcryptid/floatchat/internal/config"
	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/index"
	"github.com/couchcryptid/floatchat/internal/ingest"
	"github.com/couchcryptid/floatchat/internal/interpret"
	"github.com/couchcryptid/floatchat/internal/observability"
	"github.com/couchcryptid/floatchat/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load and index the corpus once; the index is read-only afterward.
	res, err := ingest.NewLoader(logger, metrics).Ingest(ctx, cfg.DataDir)
	if err != nil {
		logger.Error("failed to load data", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	ix := index.Build(res.Records)
	logger.Info("index built",
		"records", ix.Len(),
		"unparsed_timestamps", len(ix.Unparsed()),
		"regions", ix.Regions(),
	)

	// Initialize augmenter (feature-flagged via AUGMENTER_ENABLED / provider keys).
	var augmenter domain.Augmenter
	if cfg.AugmenterEnabled {
		var providers []domain.Augmenter
		for _, p := range cfg.Providers() {
			providers = append(providers, llm.NewClient(p.Name, p.APIKey, p.BaseURL, p.Model, metrics, logger))
			logger.Info("augmenter provider configured", "provider", p.Name, "model", p.Model)
		}
		augmenter = llm.NewCachedAugmenter(llm.NewChain(logger, providers...), cfg.AugmenterCacheSize, metrics)
		metrics.AugmenterEnabled.Set(1)
		logger.Info("augmenter enabled", "cache_size", cfg.AugmenterCacheSize, "timeout", cfg.AugmenterTimeout)
	} else {
		logger.Info("augmenter disabled, using local rules only")
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.AuditEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("query audit publishing enabled", "topic", cfg.KafkaAuditTopic)
	}

	p := pipeline.New(
		interpret.New(augmenter, cfg.AugmenterTimeout, logger),
		ix,
		compose.New(augmenter, cfg.AugmenterTimeout, logger),
		publisher,
		logger,
		metrics,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := p.Drain(shutdownCtx); err != nil {
		logger.Warn("audit events still in flight at shutdown", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
