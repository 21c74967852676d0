package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ksuazo/corpusvec/internal/audit"
	"github.com/ksuazo/corpusvec/internal/config"
	"github.com/ksuazo/corpusvec/internal/document"
	"github.com/ksuazo/corpusvec/internal/embed"
	"github.com/ksuazo/corpusvec/internal/logger"
	"github.com/ksuazo/corpusvec/internal/pipeline"
	"github.com/ksuazo/corpusvec/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "", "Path to a YAML config file")
	corpusDir := flag.String("dir", "", "Corpus directory (overrides config)")
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found or error loading it")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return 1
	}
	if *corpusDir != "" {
		cfg.Corpus.Dir = *corpusDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return 1
	}

	// Re-initialize the logger with the log file once config is known
	if cfg.LogFile != "" {
		if err := logger.InitWithFile(*debug, cfg.LogFile); err != nil {
			logger.Error("Failed to open log file: %v", err)
			return 1
		}
		defer logger.Close()
	}

	logger.Info("Starting corpus processing run")

	// The corpus directory must exist before anything else is acquired
	if _, err := os.Stat(cfg.Corpus.Dir); err != nil {
		logger.Error("Corpus directory %s is not accessible: %v", cfg.Corpus.Dir, err)
		return 1
	}

	// Interruption leaves the collection in whatever partial state existed;
	// every insert is its own unit of durability.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Connect to the document store
	st, err := store.Connect(ctx, store.Config{
		URI:        cfg.Store.URI,
		Hosts:      cfg.Store.Hosts,
		ReplicaSet: cfg.Store.ReplicaSet,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
	})
	if err != nil {
		logger.Error("Failed to connect to the document store: %v", err)
		return 1
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("Error closing store connection: %v", err)
		}
	}()

	// Initialize the embedding service client
	embedder, err := embed.NewHTTPEmbedder(embed.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKey:    os.Getenv(cfg.Embedder.APIKeyEnv),
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		Timeout:   cfg.Embedder.Timeout(),
	})
	if err != nil {
		logger.Error("Failed to initialize embedding client: %v", err)
		return 1
	}
	if err := embedder.Warmup(ctx); err != nil {
		logger.Error("%v", err)
		return 1
	}

	// Run the batch
	builder := document.NewBuilder(embedder)
	runner := pipeline.NewRunner(cfg.Corpus.Dir, cfg.Corpus.Extension, builder, st)
	stats, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Error("Run interrupted, collection left in partial state")
		} else {
			logger.Error("Batch run failed: %v", err)
		}
		return 1
	}

	// Summary with a live count cross-check
	count, err := st.Count(ctx)
	if err != nil {
		logger.Warn("Could not fetch final collection count: %v", err)
		count = -1
	}
	stats.WriteSummary(os.Stdout, count)

	// Post-run audit, report-only
	if _, err := audit.Run(ctx, st, embedder.Dimension()); err != nil {
		logger.Warn("Audit could not run: %v", err)
	}

	// Secondary indexes for downstream consumers
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Warn("Error creating indexes: %v", err)
	}

	logger.Info("Run complete")
	return 0
}
