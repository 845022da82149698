package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/ai"
	"resumeBuilder/internal/api"
	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/importer"
	"resumeBuilder/internal/pdf"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.Name))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	authService, err := loadAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	textGen, importGen, closeAI, err := newGenerators(ctx, cfg.AI, logger)
	if err != nil {
		log.Fatalf("init ai client: %v", err)
	}
	defer closeAI()

	locale := render.LocaleFor(cfg.Export.Locale)
	registry := render.DefaultRegistry()
	if !registry.SetFallback(cfg.Export.DefaultTemplate) {
		logger.Warn("unknown default template, keeping built-in fallback", slog.String("template", cfg.Export.DefaultTemplate))
	}
	htmlRenderer := render.NewHTMLRenderer(registry, render.Options{Locale: locale, Markdown: cfg.Export.MarkdownDescriptions})
	st := store.New(db)
	exporter := export.NewService(st, htmlRenderer, newPDFRenderer(cfg.Renderer, logger),
		export.WithPictures(storageClient),
		export.WithLogger(logger),
	)
	imp := importer.New(importGen,
		importer.WithTimeout(cfg.AI.Timeout),
		importer.WithLogger(logger),
	)

	router := api.NewRouter(logger)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	err = api.RegisterRoutes(router, api.Deps{
		DB:       db,
		Redis:    redisClient,
		Auth:     authService,
		Store:    st,
		Registry: registry,
		Exporter: exporter,
		Importer: imp,
		Text:     ai.NewTextService(textGen, cfg.AI.Timeout, locale.Code),
		Queue:    asynqClient,
		Objects:  storageClient,
		Scanner:  api.NewClamdScanner(cfg.Upload.ClamdAddr),
		Logger:   logger,
		Config:   cfg,
	})
	if err != nil {
		log.Fatalf("register routes: %v", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start api server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", slog.Any("error", err))
	}
	logger.Info("api stopped")
}

func loadAuthService(cfg config.AuthConfig) (*auth.AuthService, error) {
	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	publicKey, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return auth.NewAuthService(privateKey, publicKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// newGenerators 返回文本生成器（带重试）与导入解析器（JSON 输出，不重试）。
func newGenerators(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (ai.Generator, ai.Generator, func(), error) {
	policy := ai.Policy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     ai.LinearBackoff(cfg.BackoffStep),
		Retryable:   ai.IsOverloaded,
	}

	switch cfg.Provider {
	case "openai":
		text := ai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		parser := text.Derive(cfg.OpenAIModel, ai.WithJSONOutput())
		return ai.WithRetry(text, policy, ai.WithRetryLogger(logger)), parser, func() {}, nil
	default:
		text, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel)
		if err != nil {
			return nil, nil, nil, err
		}
		parser := text.Derive(cfg.GeminiImportModel, ai.WithJSONOutput())
		closeFn := func() {
			if err := text.Close(); err != nil {
				logger.Error("close gemini client failed", slog.Any("error", err))
			}
		}
		return ai.WithRetry(text, policy, ai.WithRetryLogger(logger)), parser, closeFn, nil
	}
}

func newPDFRenderer(cfg config.RendererConfig, logger *slog.Logger) *pdf.Renderer {
	opts := []pdf.Option{pdf.WithTimeout(cfg.Timeout), pdf.WithLogger(logger)}
	if cfg.Engine == "chromedp" {
		return pdf.NewChromedp(pdf.ChromedpOptions{ExecPath: cfg.BrowserBin, NoSandbox: cfg.NoSandbox}, opts...)
	}
	return pdf.NewRod(pdf.RodOptions{Bin: cfg.BrowserBin, NoSandbox: cfg.NoSandbox}, opts...)
}
