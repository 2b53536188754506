package app

import (
	"context"
	"log/slog"

	httpapp "darkroom/internal/app/http"
	"darkroom/internal/config"
	"darkroom/internal/mailer"
	"darkroom/internal/notifier"
	"darkroom/internal/repository"
	"darkroom/internal/services/media_service"
	"darkroom/internal/services/post_service"
	"darkroom/internal/services/settings_service"
	"darkroom/internal/services/token_service"
	"darkroom/internal/services/user_service"
	filestorage "darkroom/internal/storage/filestorage"
	redisapp "darkroom/internal/storage/redis"
	httprouters "darkroom/internal/transport/http"
	"darkroom/internal/youtube"
)

// App wires storage, services and the HTTP server together.
type App struct {
	HTTPServer *httpapp.Server
	Repo       *repository.Repository
	Redis      *redisapp.Client
	Hub        *notifier.Hub
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	files, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		return nil, err
	}

	var mail *mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.New(log, mailer.Config{
			Host:         cfg.SMTP.Host,
			Port:         cfg.SMTP.Port,
			Username:     cfg.SMTP.Username,
			Password:     cfg.SMTP.Password,
			From:         cfg.SMTP.From,
			ContactTo:    cfg.SMTP.ContactTo,
			ResetURLBase: cfg.SMTP.ResetURLBase,
		})
	}

	hub := notifier.NewHub(log)

	tokenService := token_service.NewTokenService(
		log, repository.NewRedisTokenRepo(redisClient),
		cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL,
	)

	var resetMailer user_service.ResetMailer = mailer.LogOnly{Log: log}
	var contact httprouters.ContactMailer = mailer.LogOnly{Log: log}
	if mail != nil {
		resetMailer = mail
		contact = mail
	}

	postService := post_service.NewPostService(log, repo.Post, hub)
	userService := user_service.NewUserService(log, repo.User, tokenService, resetMailer, cfg.Auth.TOTPIssuer)
	settingsService := settings_service.NewSettingsService(log, repo.Setting)
	mediaService := media_service.NewMediaService(log, repo.Media, files, cfg.FileStorage.MaxSize)
	videoService := youtube.NewService(log, cfg.YouTube.ChannelID, cfg.YouTube.Limit, cfg.YouTube.CacheTTL)

	routers := httprouters.NewRouter(
		log,
		postService,
		userService,
		tokenService,
		settingsService,
		mediaService,
		repo.Category,
		videoService,
		contact,
	)

	server := httpapp.New(log, httpapp.Config{
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		JWTSecret:     cfg.Auth.JWTSecret,
		SessionSecret: cfg.HTTP.SessionSecret,
		UploadsDir:    cfg.FileStorage.BaseDir,
	}, routers)

	return &App{
		HTTPServer: server,
		Repo:       repo,
		Redis:      redisClient,
		Hub:        hub,
	}, nil
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		// Shutdown errors are not actionable at this point.
		_ = err
	}
	_ = a.Redis.Close()
	a.Repo.Close()
}
