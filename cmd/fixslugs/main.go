// One-shot slug repair: recomputes the canonical slug for every post
// and rewrites the ones that drifted from their title.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"darkroom/internal/config"
	"darkroom/internal/repository"
	"darkroom/internal/services/post_service"
)

func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err.Error()))
		os.Exit(1)
	}
	defer repo.Close()

	svc := post_service.NewPostService(log, repo.Post, nil)

	report, err := svc.RepairSlugs(ctx)
	if err != nil {
		log.Error("slug repair failed", slog.Any("error", err.Error()))
		os.Exit(1)
	}

	log.Info("done",
		slog.Int("total", report.Total),
		slog.Int("updated", report.Updated),
	)
}
