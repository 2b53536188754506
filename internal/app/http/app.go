package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"darkroom/internal/domain/models"
	custommw "darkroom/internal/middleware"
	httprouters "darkroom/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Config struct {
	Host          string
	Port          string
	JWTSecret     string
	SessionSecret string
	// UploadsDir is served statically under /uploads.
	UploadsDir string
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	cfg     Config
}

func New(log *slog.Logger, cfg Config, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.SessionSecret))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("12M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(custommw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	if cfg.UploadsDir != "" {
		e.Static("/uploads", cfg.UploadsDir)
	}

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		cfg:     cfg,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.cfg.Port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	requiredJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(s.cfg.JWTSecret),
	})

	// optionalJWT parses a bearer token when one is present so public
	// read endpoints can tell elevated staff from anonymous readers.
	optionalJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(s.cfg.JWTSecret),
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})

	api := s.e.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.routers.Register)
			auth.POST("/login", s.routers.Login)
			auth.POST("/refresh", s.routers.Refresh)
			auth.POST("/forgot-password", s.routers.ForgotPassword)
			auth.POST("/reset-password", s.routers.ResetPassword)

			auth.POST("/logout", s.routers.Logout, requiredJWT)
			auth.POST("/2fa/setup", s.routers.TwoFactorSetup, requiredJWT)
			auth.POST("/2fa/verify", s.routers.TwoFactorVerify, requiredJWT)
			auth.DELETE("/2fa", s.routers.TwoFactorDisable, requiredJWT)
		}

		api.GET("/posts", s.routers.ListPosts, optionalJWT)
		api.GET("/posts/:slug", s.routers.GetPost, optionalJWT)
		api.GET("/categories", s.routers.ListCategories)
		api.GET("/settings/:key", s.routers.GetSetting)
		api.GET("/videos/latest", s.routers.LatestVideos)
		api.POST("/contact", s.routers.Contact)

		staff := api.Group("", requiredJWT,
			httprouters.RequireRole(models.RoleEditor, models.RoleAdmin, models.RoleSuperAdmin))
		{
			staff.POST("/posts", s.routers.CreatePost)
			staff.GET("/posts/id/:id", s.routers.GetPostByID)
			staff.PUT("/posts/:id", s.routers.UpdatePost)
			staff.DELETE("/posts/:id", s.routers.DeletePost)
			staff.POST("/posts/:id/approve", s.routers.ApprovePost)
			staff.POST("/media", s.routers.UploadMedia)
		}

		api.GET("/users/me", s.routers.Me, requiredJWT)

		admin := api.Group("/admin", requiredJWT,
			httprouters.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.GET("/users", s.routers.ListUsers)
			admin.PUT("/users/:id", s.routers.UpdateUser)
			admin.DELETE("/users/:id", s.routers.DeleteUser)
			admin.GET("/stats", s.routers.PostStats)
			admin.POST("/repair-slugs", s.routers.RepairSlugs)
			admin.PUT("/settings/:key", s.routers.UpdateSetting)
		}
	}

	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
