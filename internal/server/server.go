// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/infmoney/omegahubsite/internal/cache"
	"github.com/infmoney/omegahubsite/internal/config"
	"github.com/infmoney/omegahubsite/internal/database"
	"github.com/infmoney/omegahubsite/internal/middleware"
	"github.com/infmoney/omegahubsite/internal/models"
	"github.com/infmoney/omegahubsite/internal/repository"
	"github.com/infmoney/omegahubsite/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	forumRepo   repository.ForumRepository

	moderation     *service.ModerationService
	postService    *service.PostService
	listingService *service.ListingService
	commentService *service.CommentService
	userService    *service.UserService
	adminService   *service.AdminService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap layers use this to supply an sqlite DB or a nil Redis
// client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	forumRepo := repository.NewForumRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("omegahub-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		forumRepo:      forumRepo,
	}

	server.moderation = service.NewModerationService(userRepo)
	server.postService = service.NewPostService(postRepo, forumRepo,
		server.moderation.RequireActive, server.moderation.CanModify)
	server.listingService = service.NewListingService(postRepo,
		server.moderation.CanView, server.moderation.IsAdmin)
	server.commentService = service.NewCommentService(commentRepo, postRepo, userRepo,
		server.moderation.RequireActive, server.moderation.IsAdmin)
	server.userService = service.NewUserService(userRepo, postRepo, commentRepo, db)
	server.adminService = service.NewAdminService(userRepo, postRepo, forumRepo, db)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
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
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Put("/password", s.AuthRequired(), s.ChangePassword)

	// Public post routes; optional auth resolves self-visibility for
	// banned authors viewing their own content.
	posts := api.Group("/posts", middleware.OptionalAuth(s.config.JWTSecret))
	posts.Get("/", s.GetPosts)
	posts.Get("/featured", s.GetFeaturedPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 20, time.Minute, "search"), s.SearchPosts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)

	// Public user routes
	users := api.Group("/users", middleware.OptionalAuth(s.config.JWTSecret))
	users.Get("/by-username/:username", s.GetUserByUsername)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/comments", s.GetProfileComments)
	users.Get("/:id", s.GetUserProfile)

	// Public forum routes
	forums := api.Group("/forums")
	forums.Get("/", s.GetForums)
	forums.Get("/:id", s.GetForum)
	forums.Get("/categories/:id/posts", middleware.OptionalAuth(s.config.JWTSecret), s.GetCategoryPosts)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	me := protected.Group("/me")
	me.Get("/", s.GetMyProfile)
	me.Put("/", s.UpdateMyProfile)

	protectedPosts := protected.Group("/posts")
	protectedPosts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	protectedPosts.Post("/:id/vote", s.VotePost)
	protectedPosts.Post("/:id/favorite", s.FavoritePost)
	protectedPosts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	protectedPosts.Put("/:id", s.UpdatePost)
	protectedPosts.Delete("/:id", s.DeletePost)

	protected.Post("/users/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "profile_comment"), s.CreateProfileComment)
	protected.Delete("/comments/:id", s.DeleteComment)

	protected.Post("/keys/generate", middleware.RateLimit(
		s.redis, 5, time.Minute, "key_generate"), s.GenerateScriptKey)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/dashboard", s.AdminDashboard)
	admin.Get("/users", s.AdminListUsers)
	admin.Get("/posts", s.AdminListPosts)
	admin.Put("/users/bulk-role", s.AdminBulkAssignRole)
	admin.Put("/users/by-username/:username/role", s.AdminAssignRoleByUsername)
	admin.Put("/users/:id/role", s.AdminSetRole)
	admin.Put("/users/:id/profile", s.AdminSetProfile)
	admin.Put("/users/:id/ban", s.AdminSetBan)
	admin.Put("/posts/:id/pin", s.AdminTogglePin)
	admin.Put("/forums/:id/pin", s.AdminToggleForumPin)
	admin.Post("/forums", s.CreateForum)
	admin.Post("/forums/:id/categories", s.CreateCategory)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Cache is optional; absent Redis degrades, it does not fail.
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret)
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.moderation.IsAdmin(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Omega Hub API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled handler error", "err", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	slog.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "err", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "err", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "err", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
