package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/generation"
	"resume-builder/internal/generations"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/anthropic"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/llm/stub"
	"resume-builder/internal/preview"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

const historyCapacity = 500

// App holds shared dependencies and the assembled router.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Provider   llm.Provider
	Model      string
	Generation *generation.Service
	History    *generations.Service
	Renderer   *render.Renderer
	PDF        *render.PDFRenderer
	Health     *health.Service
}

// Build wires every dependency from cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, modelName, err := BuildProvider(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	opts := generation.Options{
		Model:      modelName,
		MaxTokens:  cfg.LLMMaxTokens,
		Timeout:    cfg.GenerationTimeout,
		ChunkBytes: cfg.StreamChunkBytes,
	}
	if cfg.SchemaValidation {
		schema, err := model.LoadSchema()
		if err != nil {
			closeDB(sqlDB)
			return nil, err
		}
		opts.Schema = schema
	}
	genSvc, err := generation.NewService(provider, opts)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	var repo generations.Repo
	if sqlDB != nil {
		repo = &generations.PGRepo{DB: sqlDB}
	} else {
		repo = generations.NewMemoryRepo(historyCapacity)
	}
	history := generations.NewService(repo)

	renderer, err := render.NewRenderer()
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}
	var pdf *render.PDFRenderer
	var printer preview.PDFPrinter
	if cfg.PDFRenderEnabled {
		pdf = render.NewPDFRenderer(cfg.ChromePath, cfg.PDFTimeout)
		printer = pdf
	}

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Provider:   provider,
		Model:      modelName,
		Generation: genSvc,
		History:    history,
		Renderer:   renderer,
		PDF:        pdf,
		Health:     health.NewService(pinger, provider.Name(), pdf != nil),
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		GenerationHandler: generation.NewHandler(genSvc, history),
		HistoryHandler:    generations.NewHandler(history),
		PreviewHandler:    preview.NewHandler(renderer, printer),
		Health:            app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"provider": provider.Name(),
		"model":    modelName,
		"history":  historyKind(sqlDB),
		"pdf":      pdf != nil,
		"schema":   cfg.SchemaValidation,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// BuildProvider selects the streaming provider named by LLM_PROVIDER and wraps it with retry.
// A missing API key falls back to the placeholder outside production.
func BuildProvider(ctx context.Context, cfg config.Config) (llm.Provider, string, error) {
	var (
		provider  llm.Provider
		modelName = strings.TrimSpace(cfg.LLMModel)
		err       error
	)
	switch cfg.LLMProvider {
	case "openai":
		if modelName == "" {
			modelName = openai.DefaultModel
		}
		provider, err = openai.NewClient(cfg.OpenAIAPIKey, modelName, cfg.OpenAIBaseURL)
	case "gemini":
		if modelName == "" {
			modelName = gemini.DefaultModel
		}
		provider, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, modelName, cfg.GeminiBaseURL)
	case "stub":
		return stub.Sample(64), "stub", nil
	case "placeholder":
		return llm.PlaceholderProvider{}, "", nil
	default:
		if modelName == "" {
			modelName = anthropic.DefaultModel
		}
		provider, err = anthropic.NewClient(cfg.AnthropicAPIKey, modelName, anthropic.WithBaseURL(cfg.AnthropicBaseURL))
	}
	if err != nil {
		if cfg.Env == "production" {
			return nil, "", fmt.Errorf("llm provider %s: %w", cfg.LLMProvider, err)
		}
		telemetry.Warn("bootstrap.provider_unavailable", map[string]any{
			"provider": cfg.LLMProvider,
			"error":    err,
		})
		return llm.PlaceholderProvider{}, "", nil
	}

	return llm.WithRetry(provider, llm.RetryPolicy{
		Attempts:  cfg.LLMRetryAttempts,
		BaseDelay: cfg.LLMRetryBaseDelay,
		OnRetry: func(name string, attempt int, cause error) {
			metrics.IncProviderRetry(name)
			telemetry.Warn("llm.retry", map[string]any{
				"provider": name,
				"attempt":  attempt,
				"error":    cause,
			})
		},
	}), modelName, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.history_memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			closeDB(sqlDB)
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.history_memory", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func historyKind(sqlDB *sql.DB) string {
	if sqlDB == nil {
		return "memory"
	}
	return "postgres"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
