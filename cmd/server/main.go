package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/composer"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/handler"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/janitor"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/media"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/provider"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/script"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/session"
	ws "github.com/oldtraffrod/tiktok-videogenerator/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	for _, dir := range []string{cfg.Storage.MediaDir, cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	// ffmpeg is required; refuse to start without it
	ffmpeg, err := composer.NewFFmpeg()
	if err != nil {
		log.Fatalf("Failed to locate ffmpeg: %v", err)
	}

	// Session store and rate limiting: Redis when configured, otherwise
	// in-memory with the janitor handling expiry.
	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var store session.Store
	var memStore *session.MemoryStore
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Redis not available: %v", err)
		}
		store = session.NewRedisStore(redisClient, sessionTTL)
	} else {
		memStore = session.NewMemoryStore(sessionTTL)
		store = memStore
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Stock media providers; unconfigured ones are skipped at search time
	searcher := provider.NewMultiSearcher(
		provider.NewPixabayClient(&cfg.Pixabay),
		provider.NewPexelsClient(&cfg.Pexels),
		provider.NewUnsplashClient(&cfg.Unsplash),
	)

	// Initialize services
	workflowService := service.NewWorkflowService(
		store,
		script.NewAnalyzer(),
		searcher,
		media.NewDownloader(),
		composer.NewComposer(ffmpeg),
		hub,
		cfg.Storage,
		cfg.Search.PerPage,
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(workflowService, authMiddleware, validate)
	scriptHandler := handler.NewScriptHandler(workflowService, validate)
	mediaHandler := handler.NewMediaHandler(workflowService, validate)
	renderHandler := handler.NewRenderHandler(workflowService, validate)
	outputHandler := handler.NewOutputHandler(workflowService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Session routes
	app.Post("/session", sessionHandler.Create)
	sess := app.Group("/session", authMiddleware.Authenticate())
	sess.Get("/", sessionHandler.Stage)
	sess.Post("/reset", sessionHandler.Reset)
	sess.Post("/back", sessionHandler.Back)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Script routes
	api.Post("/script/analyze", scriptHandler.Analyze)

	// Media routes
	mediaGroup := api.Group("/media")
	mediaGroup.Post("/search", rateLimiter.SearchLimit(cfg.RateLimit.SearchPerMin), mediaHandler.Search)
	mediaGroup.Post("/select", mediaHandler.Select)
	mediaGroup.Delete("/:sceneId/:index", mediaHandler.Remove)
	mediaGroup.Get("/selected", mediaHandler.Selected)

	// Render routes
	render := api.Group("/render")
	render.Get("/bgm", renderHandler.ListBGM)
	render.Put("/options", renderHandler.Options)
	render.Post("/", rateLimiter.RenderLimit(cfg.RateLimit.RenderPerHour), renderHandler.Render)

	// Output routes
	api.Get("/output", outputHandler.Info)
	api.Get("/output/file", outputHandler.File)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/sessions/:sessionId", websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("sessionId")
		hub.HandleConnection(c, sessionID)
	}))

	// Start the cleanup schedule
	var purger janitor.Purger
	if memStore != nil {
		purger = memStore
	}
	jan := janitor.New(cfg.Janitor, cfg.Storage, purger, workflowService.CleanupSession)
	if err := jan.Start(); err != nil {
		log.Fatalf("Failed to start janitor: %v", err)
	}
	defer jan.Stop()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
