// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "workshophub/docs" // swagger docs
	"workshophub/internal/config"
	"workshophub/internal/database"
	"workshophub/internal/featureflags"
	"workshophub/internal/jobs"
	"workshophub/internal/mailer"
	"workshophub/internal/middleware"
	"workshophub/internal/models"
	"workshophub/internal/notifications"
	"workshophub/internal/repository"
	"workshophub/internal/service"

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

const defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

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
	resetRepo   repository.PasswordResetRepository
	revocations repository.TokenRevocationStore

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	cleanup      *jobs.Cleanup
	featureFlags *featureflags.Manager

	catalog     *service.CatalogService
	enrollments *service.EnrollmentService
	wishlists   *service.WishlistService
	reviews     *service.ReviewService
	auth        *service.AuthService
	profiles    *service.ProfileService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; realtime updates and Redis-backed rate limits are then
// disabled and revocations are answered from the database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	categoryRepo := repository.NewCategoryRepository(db)
	workshopRepo := repository.NewWorkshopRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("workshophub-api"),
		userRepo:       repository.NewUserRepository(db),
		resetRepo:      repository.NewPasswordResetRepository(db),
		revocations:    repository.NewTokenRevocationStore(db, redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		events = s.notifier
	}

	resetTTL := time.Duration(cfg.ResetTokenTTLHours) * time.Hour
	s.catalog = service.NewCatalogService(categoryRepo, workshopRepo)
	s.enrollments = service.NewEnrollmentService(enrollmentRepo, s.catalog, events, s.featureFlags)
	s.wishlists = service.NewWishlistService(wishlistRepo, s.catalog)
	s.reviews = service.NewReviewService(reviewRepo)
	s.auth = service.NewAuthService(s.userRepo, s.resetRepo, mailer.New(cfg.SendGridAPIKey, cfg.MailFrom),
		s.featureFlags, resetTTL)
	s.profiles = service.NewProfileService(s.userRepo, profileRepo, enrollmentRepo, wishlistRepo,
		s.enrollments, s.wishlists)
	s.cleanup = jobs.NewCleanup(s.resetRepo, s.revocations)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			middleware.RateLimited.WithLabelValues("global").Inc()
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

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/hello", s.Hello)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, middleware.RegisterRule), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, middleware.LoginRule), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/profile", s.AuthRequired(), s.GetProfile)
	auth.Put("/profile", s.AuthRequired(), s.UpdateProfile)
	auth.Post("/request-password-reset", middleware.RateLimit(s.redis, middleware.ResetRequestRule), s.RequestPasswordReset)
	auth.Post("/reset-password", middleware.RateLimit(s.redis, middleware.ResetRule), s.ResetPassword)

	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Get("/:slug", s.GetCategory)

	workshops := api.Group("/workshops")
	workshops.Get("/", s.ListWorkshops)
	workshops.Get("/:slug", s.GetWorkshop)

	// WebSocket routes are registered before the protected group, whose
	// middleware would otherwise reject anonymous upgrades.
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws", s.WebSocketUpgrade(), s.SeatsWebSocketHandler())

	protected := api.Group("", s.AuthRequired())

	enrollments := protected.Group("/enrollments")
	enrollments.Get("/", s.ListEnrollments)
	enrollments.Post("/", middleware.RateLimit(s.redis, middleware.EnrollRule), s.CreateEnrollment)
	enrollments.Post("/:id/cancel", s.CancelEnrollment)
	enrollments.Get("/:id", s.GetEnrollment)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", s.ListWishlist)
	wishlist.Post("/", s.AddWishlist)
	// Specific /toggle route before generic /:id
	wishlist.Post("/toggle", s.ToggleWishlist)
	wishlist.Delete("/:id", s.DeleteWishlist)

	reviews := protected.Group("/reviews")
	reviews.Get("/", s.ListReviews)
	reviews.Post("/", middleware.RateLimit(s.redis, middleware.ReviewRule), s.CreateReview)
	reviews.Get("/:id", s.GetReview)
	reviews.Put("/:id", s.UpdateReview)
	reviews.Patch("/:id", s.UpdateReview)
	reviews.Delete("/:id", s.DeleteReview)

	protected.Get("/feature-flags", s.GetFeatureFlags)
}

// Hello handles GET /api/hello
// @Summary Welcome message
// @Tags system
// @Produce json
// @Success 200 {object} object{message=string,status=string}
// @Router /hello [get]
func (s *Server) Hello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to Workshop Enrollment API!",
		"status":  "success",
	})
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
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// NewApp builds the Fiber app with middleware and routes but does not listen.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Workshop Enrollment API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	if err := s.cleanup.Start(s.config.ResetCleanupSchedule); err != nil {
		middleware.Logger.Error("failed to schedule cleanup", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	s.cleanup.Stop(ctx)

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
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
