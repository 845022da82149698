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

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/pdf"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
	"resumeBuilder/internal/worker"
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
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	registry := render.DefaultRegistry()
	registry.SetFallback(cfg.Export.DefaultTemplate)
	htmlRenderer := render.NewHTMLRenderer(registry, render.Options{
		Locale:   render.LocaleFor(cfg.Export.Locale),
		Markdown: cfg.Export.MarkdownDescriptions,
	})
	pdfOpts := []pdf.Option{pdf.WithTimeout(cfg.Renderer.Timeout), pdf.WithLogger(logger)}
	var pdfRenderer *pdf.Renderer
	if cfg.Renderer.Engine == "chromedp" {
		pdfRenderer = pdf.NewChromedp(pdf.ChromedpOptions{ExecPath: cfg.Renderer.BrowserBin, NoSandbox: cfg.Renderer.NoSandbox}, pdfOpts...)
	} else {
		pdfRenderer = pdf.NewRod(pdf.RodOptions{Bin: cfg.Renderer.BrowserBin, NoSandbox: cfg.Renderer.NoSandbox}, pdfOpts...)
	}

	st := store.New(db)
	exporter := export.NewService(st, htmlRenderer, pdfRenderer,
		export.WithPictures(storageClient),
		export.WithLogger(logger),
	)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeExportPDF, worker.NewExportTaskHandler(exporter, storageClient, st, worker.NewRedisNotifier(redisClient), logger))
	mux.Handle(tasks.TypeCleanupExports, worker.NewCleanupTaskHandler(storageClient, st, time.Duration(cfg.Export.RetentionDays)*24*time.Hour, logger))

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: newAsynqLogger(logger)})
	if _, err := scheduler.Register(cfg.Worker.CleanupSchedule, tasks.NewCleanupExportsTask()); err != nil {
		log.Fatalf("register cleanup schedule: %v", err)
	}

	metricsServer := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.Any("error", err))
		}
	}()

	if err := scheduler.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	if err := server.Start(mux); err != nil {
		log.Fatalf("start worker server: %v", err)
	}
	logger.Info("worker service started",
		slog.String("redis_addr", cfg.Redis.Addr()),
		slog.Int("concurrency", cfg.Worker.Concurrency),
		slog.String("cleanup_schedule", cfg.Worker.CleanupSchedule),
	)

	<-ctx.Done()
	scheduler.Shutdown()
	server.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// asynqLogger 把 asynq 的日志转到 slog。
type asynqLogger struct {
	l *slog.Logger
}

func newAsynqLogger(l *slog.Logger) asynqLogger {
	return asynqLogger{l: l.With(slog.String("component", "asynq"))}
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(sprint(args)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(sprint(args)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(sprint(args)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(sprint(args)) }
func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(sprint(args))
	os.Exit(1)
}

func sprint(args []any) string {
	return fmt.Sprint(args...)
}
