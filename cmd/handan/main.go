package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/handan-ai/handan/internal/agent"
	"github.com/handan-ai/handan/internal/config"
	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/orchestrator"
	"github.com/handan-ai/handan/internal/server"
	"github.com/handan-ai/handan/internal/service/completion"
	"github.com/handan-ai/handan/internal/service/embedding"
	"github.com/handan-ai/handan/internal/service/knowledge"
	"github.com/handan-ai/handan/internal/service/triage"
	"github.com/handan-ai/handan/internal/storage"
	"github.com/handan-ai/handan/internal/telemetry"
	"github.com/handan-ai/handan/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("HANDAN_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("handan starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Verify critical tables exist after migration. If the pgvector
	// extension failed to create, the migration fails silently on some
	// hosted Postgres setups and the server would start with no tables.
	var schemaOK bool
	if err := db.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'work_items')`,
	).Scan(&schemaOK); err != nil {
		return fmt.Errorf("schema verification: %w", err)
	}
	if !schemaOK {
		return fmt.Errorf("critical table 'work_items' does not exist after migration; check that the vector extension can be created")
	}

	// Embedding provider: real when a key is configured, zero vectors
	// otherwise so knowledge ingestion still works in dev.
	var embedder embedding.Provider
	if cfg.OpenAIAPIKey != "" {
		embedder = embedding.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, model.EmbeddingDimensions)
		logger.Info("embedding: openai", "model", cfg.EmbeddingModel)
	} else {
		embedder = embedding.NewNoopProvider(model.EmbeddingDimensions)
		logger.Info("embedding: noop (no OPENAI_API_KEY)")
	}

	knowledgeSvc := knowledge.New(db, embedder, logger)

	// LLM decision agent: enabled only when a credential is configured and
	// no explicit disable flag is set.
	var llm agent.Agent
	if cfg.LLMEnabled() {
		completer := completion.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
		llm = agent.NewLLMAgent(embedder, completer, knowledgeSvc, logger)
		logger.Info("llm agent: enabled", "model", cfg.ChatModel)
	} else {
		logger.Info("llm agent: disabled")
	}

	orch := orchestrator.New(llm, logger)
	triageSvc := triage.New(db, orch, logger)

	srv := server.New(server.ServerConfig{
		DB:                  db,
		TriageSvc:           triageSvc,
		KnowledgeSvc:        knowledgeSvc,
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
