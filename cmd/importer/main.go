// Batch importer: reads a WordPress REST export from disk and drives
// it through the ingestion pipeline. Failed records are reported but
// never abort the run.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"darkroom/internal/config"
	"darkroom/internal/domain/models"
	"darkroom/internal/ingest"
	"darkroom/internal/repository"
)

func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if cfg.Ingest.ExportPath == "" {
		log.Error("ingest.export_path is not configured")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err.Error()))
		os.Exit(1)
	}
	defer repo.Close()

	records, err := ingest.LoadExport(cfg.Ingest.ExportPath)
	if err != nil {
		log.Error("failed to load export",
			slog.String("path", cfg.Ingest.ExportPath),
			slog.Any("error", err.Error()),
		)
		os.Exit(1)
	}

	log.Info("export loaded",
		slog.String("path", cfg.Ingest.ExportPath),
		slog.Int("records", len(records)),
	)

	categories := make([]models.Category, 0, len(cfg.Ingest.Categories))
	for _, c := range cfg.Ingest.Categories {
		categories = append(categories, models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}

	orchestrator := ingest.NewOrchestrator(log, repo.Post, repo.Category, ingest.Config{
		CategoryMap:       cfg.Ingest.CategoryMap,
		DefaultCategoryID: cfg.Ingest.DefaultCategoryID,
		Categories:        categories,
	})

	report, err := orchestrator.Ingest(ctx, records)
	if err != nil {
		log.Error("import aborted", slog.Any("error", err.Error()))
		if report != nil {
			logReport(log, report)
		}
		os.Exit(1)
	}

	logReport(log, report)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func logReport(log *slog.Logger, report *ingest.Report) {
	for _, rec := range report.Records {
		if rec.Error != "" {
			log.Warn("record failed",
				slog.Int64("external_id", rec.ExternalID),
				slog.String("title", rec.Title),
				slog.String("error", rec.Error),
			)
		}
	}

	log.Info("import finished",
		slog.Int("processed", report.Processed),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)
}
