package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	httpadapter "resume-export/internal/adapter/http"
	repo "resume-export/internal/adapter/repository"
	"resume-export/internal/config"
	"resume-export/internal/cvtemplate"
	"resume-export/internal/infrastructure/migration"
	"resume-export/internal/logger"
	"resume-export/internal/pdfclean"
	"resume-export/internal/publisher"
	"resume-export/internal/usecase"
	infra "resume-export/pkg/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootFatal(err, "load config")
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		bootFatal(err, "init logger")
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := cvtemplate.Load(cfg.TemplatesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.TemplatesDir).Msg("load templates")
	}

	// infra setup
	pool, err := infra.NewExportsPool(ctx, cfg.JobsDatabaseURL)
	switch {
	case errors.Is(err, infra.ErrNoDSN):
		log.Info().Msg("JOBS_DATABASE_URL not set, running without persistence")
	case err != nil:
		log.Warn().Err(err).Msg("exports DB not available")
		pool = nil
	default:
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool, logger.Component("migration")); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
	}

	opts := []usecase.ExporterOption{
		usecase.WithExportsRepo(repo.NewExportsRepo(pool)),
		usecase.WithCVSource(repo.NewCVRepo(pool)),
		usecase.WithRenderAttempts(cfg.RenderAttempts),
		usecase.WithArtifactsDir(cfg.ArtifactsDir),
		usecase.WithLogger(logger.Component("exporter")),
	}

	if cfg.NatsURL != "" {
		conn, pub, err := publisher.Connect(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("nats not available, export events disabled")
		} else {
			defer conn.Drain()
			opts = append(opts, usecase.WithPublisher(pub))
		}
	}

	if cfg.RemoveBlankPages {
		opts = append(opts, usecase.WithRemover(pdfclean.NewRemover(
			pdfclean.WithTextOperators(cfg.BlankPageTextOperators...),
			pdfclean.WithMinContentLength(cfg.BlankPageMinContentLength),
			pdfclean.WithLogger(logger.Component("pdfclean")),
		)))
	} else {
		opts = append(opts, usecase.WithRemover(nil))
	}

	renderer := infra.NewChromedpRenderer(infra.RendererConfig{
		ChromePath:    cfg.ChromePath,
		Timeout:       cfg.RenderTimeout,
		MaxConcurrent: cfg.MaxConcurrentRenders,
		Logger:        logger.Component("renderer"),
	})
	exporter := usecase.NewExporter(catalog, renderer, opts...)

	app := fiber.New(fiber.Config{
		AppName:               "resume-export",
		DisableStartupMessage: true,
		BodyLimit:             2 * 1024 * 1024,
	})
	var limiter *httpadapter.UserRateLimiter
	if cfg.ExportRatePerMinute > 0 {
		limiter = httpadapter.NewUserRateLimiter(cfg.ExportRatePerMinute, cfg.ExportRateBurst)
	}
	httpadapter.NewHandler(exporter, catalog, limiter, logger.Component("http")).Register(app)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(cfg.RenderTimeout + 5*time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// bootFatal logs through a console logger since the global one may not exist yet.
func bootFatal(err error, msg string) {
	l, _ := logger.New("info", "")
	l.Fatal().Err(err).Msg(msg)
}
