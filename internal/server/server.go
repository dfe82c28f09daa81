// Package server contains the HTTP handlers of the marketplace API.
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carmarket/internal/auth"
	"carmarket/internal/config"
	"carmarket/internal/middleware"
	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/service"
	"carmarket/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Asker answers free-text questions. It never fails.
type Asker interface {
	Ask(ctx context.Context, message string) string
}

// Deps are the already-initialized dependencies of the API.
// Redis and Metrics are optional.
type Deps struct {
	Config    *config.Config
	Store     store.Store
	Redis     *redis.Client
	Metrics   *fiberprometheus.FiberPrometheus
	Auth      *auth.Service
	Tokens    *auth.Tokens
	Listings  *service.ListingService
	Chat      *service.ChatService
	Community *service.CommunityService
	Assistant Asker
}

// Server holds all dependencies and provides handlers
type Server struct {
	config    *config.Config
	store     store.Store
	redis     *redis.Client
	prom      *fiberprometheus.FiberPrometheus
	auth      *auth.Service
	tokens    *auth.Tokens
	listings  *service.ListingService
	chat      *service.ChatService
	community *service.CommunityService
	assistant Asker
	app       *fiber.App
}

// NewServer builds the Fiber application with its middleware and routes.
func NewServer(d Deps) *Server {
	s := &Server{
		config:    d.Config,
		store:     d.Store,
		redis:     d.Redis,
		prom:      d.Metrics,
		auth:      d.Auth,
		tokens:    d.Tokens,
		listings:  d.Listings,
		chat:      d.Chat,
		community: d.Community,
		assistant: d.Assistant,
	}

	s.app = fiber.New(fiber.Config{
		AppName: "CarMarket API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.setupMiddleware(s.app)
	s.setupRoutes(s.app)
	return s
}

// App exposes the Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	if s.prom != nil {
		app.Use(middleware.MetricsMiddleware(s.prom))
	}
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(s.config.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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

func (s *Server) setupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	authed := middleware.AuthRequired(s.tokens)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	authRoutes.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	api.Get("/users/me", authed, s.GetMe)

	cars := api.Group("/cars")
	cars.Get("/", s.SearchCars)
	cars.Get("/brands", s.GetBrands)
	cars.Get("/featured", s.GetFeatured)
	cars.Get("/recommendations", s.GetRecommendations)
	cars.Get("/compare", s.CompareCars)
	cars.Get("/:id", s.GetCar)
	cars.Post("/", authed, middleware.RateLimit(s.redis, 10, time.Hour, "create_listing"), s.CreateCar)
	cars.Put("/:id", authed, s.UpdateCar)

	chat := api.Group("/chat", authed)
	chat.Post("/rooms", s.StartConversation)
	chat.Get("/rooms", s.GetRooms)
	chat.Get("/rooms/:id/messages", s.GetMessages)
	chat.Post("/rooms/:id/messages", middleware.RateLimit(s.redis, 15, time.Minute, "send_chat"), s.SendMessage)
	chat.Post("/rooms/:id/read", s.MarkRead)

	api.Post("/assistant/ask", middleware.RateLimit(s.redis, 20, time.Minute, "assistant"), s.Ask)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", authed, middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", authed, s.LikePost)
	posts.Post("/:id/comments", authed, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id/comments/:commentId", authed, s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", authed, s.DeleteComment)
	posts.Post("/:id/comments/:commentId/like", authed, s.LikeComment)
	posts.Put("/:id", authed, s.UpdatePost)
	posts.Delete("/:id", authed, s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the store and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start listens on the configured port and blocks.
func (s *Server) Start() error {
	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes the store and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
	}
	if err := s.store.Close(); err != nil {
		observability.Logger.Error("error closing store", slog.String("error", err.Error()))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			observability.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}
	observability.Logger.Info("server shutdown complete")
	return nil
}
