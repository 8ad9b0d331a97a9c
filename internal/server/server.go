// Package server contains the HTTP and WebSocket handlers for Warbler.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "warbler/docs" // swagger docs
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/featureflags"
	"warbler/internal/feed"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository

	sessions     *session.Manager
	identity     *service.IdentityService
	messages     *service.MessageService
	graph        *service.GraphService
	notifier     *feed.Notifier
	hub          *feed.Hub
	featureFlags *featureflags.Manager
}

// NewServer connects to the database and Redis named by cfg and builds a Server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// redisClient may be nil; the live feed and session revocation are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server requires a database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warbler"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		userRepo:       repository.NewUserRepository(db),
		messageRepo:    repository.NewMessageRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.sessions = session.NewManager(session.Options{
		Secret: cfg.SessionSecret,
		TTL:    time.Duration(cfg.SessionTTLHours) * time.Hour,
		Secure: cfg.CookieSecure,
	}, s.userRepo)

	var publisher service.MessagePublisher
	if redisClient != nil {
		s.notifier = feed.NewNotifier(redisClient)
		s.hub = feed.NewHub()
		publisher = s.notifier
	}

	s.identity = service.NewIdentityService(s.userRepo)
	s.messages = service.NewMessageService(s.messageRepo, s.likeRepo, s.followRepo, publisher)
	s.graph = service.NewGraphService(s.userRepo, s.followRepo, s.likeRepo, s.messageRepo)

	return s, nil
}

// App builds the Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Warbler",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing first so the session lookup is part of the request span.
	app.Use(middleware.TracingMiddleware())
	app.Use(s.sessions.Middleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Credentialed CORS cannot use the "*" default.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5000,http://127.0.0.1:5000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", s.Home)

	app.Get("/signup", s.SignupForm)
	app.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	app.Get("/login", s.LoginForm)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	users := app.Group("/users")
	users.Get("/", s.ListUsers)
	users.Post("/profile", s.requireUser(policy.EditProfile), s.UpdateProfile)
	users.Post("/follow/:id", s.requireUser(policy.Follow), s.FollowUser)
	users.Post("/stop-following/:id", s.requireUser(policy.Unfollow), s.StopFollowing)
	users.Post("/add_like/:id", s.requireUser(policy.ToggleLike), s.ToggleLike)
	// Specific /:id/:resource routes before the generic /:id route.
	users.Get("/:id/following", s.requireUser(policy.ViewFollowing), s.ShowFollowing)
	users.Get("/:id/followers", s.requireUser(policy.ViewFollowers), s.ShowFollowers)
	users.Get("/:id/likes", s.requireUser(policy.ViewLikes), s.ShowLikes)
	users.Get("/:id", s.requireUser(policy.ViewProfile), s.ShowUser)

	messages := app.Group("/messages")
	messages.Post("/new", s.requireUser(policy.CreateMessage), middleware.RateLimit(s.redis, 30, time.Minute, "create_message"), s.CreateMessage)
	messages.Post("/:id/delete", s.requireUser(policy.DeleteMessage), s.DeleteMessage)
	messages.Get("/:id", s.requireUser(policy.ViewMessage), s.ShowMessage)

	app.Get("/features", s.GetFeatureFlags)
	app.Get("/ws/feed", s.FeedUpgrade, s.FeedSocket())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis answer a ping.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// startFeed subscribes the feed hub to Redis for the lifetime of the server.
func (s *Server) startFeed() error {
	if s.hub == nil || s.notifier == nil {
		return nil
	}
	return s.hub.Start(s.shutdownCtx, s.notifier)
}

// Start builds the app, starts the feed subscriber and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()
	if err := s.startFeed(); err != nil {
		middleware.Logger.Warn("live feed disabled", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server, the live feed and the backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down feed hub", slog.String("error", err.Error()))
		}
	}
	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
