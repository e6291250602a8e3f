package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/vedsathwik275/envision-sub000/internal/config"
	"github.com/vedsathwik275/envision-sub000/internal/handlers"
	"github.com/vedsathwik275/envision-sub000/internal/logging"
	"github.com/vedsathwik275/envision-sub000/internal/middleware"
	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/services"
	"github.com/vedsathwik275/envision-sub000/internal/upstream"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Envision Lane Gateway...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Sources: %s)", cfg.Port, cfg.SourcesFile)

	// Load the source registry. Falls back to built-in defaults when the
	// file is missing, so a bare checkout still starts.
	registry, err := services.NewSourceRegistry(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("❌ Failed to load source registry: %v", err)
	}
	log.Println("✅ Source registry loaded")

	// Initialize Redis (optional - quote cache works in-memory without it)
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		log.Println("🔗 Connecting to Redis...")
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (quote cache runs in-memory only)", err)
			redisService = nil
		} else {
			log.Println("✅ Redis connected successfully")
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - quote cache runs in-memory only")
	}

	// Core services
	store := services.NewAggregationStore()
	quoteCache := services.NewQuoteCacheService(cfg.CacheTTL, cfg.CacheCleanup, redisService)
	connManager := services.NewConnectionManager()

	// Upstream HTTP client with per-endpoint rate limits from the registry
	client := upstream.NewClient(cfg.UpstreamTimeout)
	applySourceLimits(client, registry)

	// Initialize Prometheus metrics
	metrics := services.InitMetrics(connManager, store, quoteCache)
	log.Println("✅ Prometheus metrics initialized")

	// Source cards - one per collaborator endpoint
	cards := []services.SourceCard{
		services.NewRateInquiryCard(client, registry),
		services.NewSpotAnalysisCard(client, registry),
		services.NewHistoricalDataCard(client, registry, cfg.HistoryDays),
		services.NewOrderReleaseCard(client, registry),
	}

	fanOut := services.NewFanOutService(store, quoteCache, registry, connManager, metrics, cfg.FanOutTimeout, cards...)
	log.Printf("✅ Fan-out service initialized (%d sources)", len(cards))

	recommendationService := services.NewRecommendationService(store, registry, client, metrics)
	log.Println("✅ Recommendation service initialized")

	// Source health probes
	healthService, err := services.NewSourceHealthService(registry, client, metrics)
	if err != nil {
		log.Fatalf("❌ Failed to initialize source health service: %v", err)
	}
	if cfg.ProbeEnabled {
		if err := healthService.Start(cfg.ProbeSchedule); err != nil {
			log.Printf("⚠️ Failed to start source health probes: %v", err)
		}
	} else {
		log.Println("⚠️ Source health probes disabled (PROBE_ENABLED=false)")
	}

	// Hot-reload sources.yaml on change
	go startSourcesFileWatcher(cfg.SourcesFile, registry, client)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:        "Envision Lane Gateway v1.0",
		ReadTimeout:    120 * time.Second,
		WriteTimeout:   120 * time.Second, // recommendation calls can hold a model inference open
		IdleTimeout:    120 * time.Second,
		BodyLimit:      5 * 1024 * 1024, // turns carry full message text, nothing larger
		ReadBufferSize: 16384,           // 16KB for request headers (privacy browsers send extra headers)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("envision")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Recommendation=%d/min, WS=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.RecommendationMax,
		rateLimitConfig.WebSocketMax,
	)

	// Fiber's CORS middleware does not allow AllowCredentials with wildcard
	// origins. With ALLOWED_ORIGINS=* the frontend is served from the same
	// origin, so credentials aren't needed.
	allowedOrigins := cfg.AllowedOrigins
	allowCredentials := allowedOrigins != "*"

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowCredentials,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", allowedOrigins)

	// Global API rate limiter - first line of DDoS defense
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	log.Println("🛡️  [RATE-LIMIT] Global API rate limiter enabled")

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(connManager, store)
	chatHandler := handlers.NewChatHandler(fanOut)
	sourcesHandler := handlers.NewSourcesHandler(store, fanOut, healthService)
	matrixHandler := handlers.NewMatrixHandler(store)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, fanOut)
	wsHandler := handlers.NewWebSocketHandler(connManager, store)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")
	api.Post("/chat/turn", chatHandler.HandleTurn)
	api.Get("/sources", sourcesHandler.List)
	api.Get("/sources/health", sourcesHandler.Health)
	api.Post("/sources/reset", sourcesHandler.Reset)
	api.Post("/sources/:key/refresh", sourcesHandler.Refresh)
	api.Post("/recommendation", middleware.RecommendationRateLimiter(rateLimitConfig), recommendationHandler.Handle)
	api.Post("/spot/matrix", matrixHandler.Build)
	api.Get("/spot/matrix", matrixHandler.FromStore)
	api.Get("/spot/matrix/export", matrixHandler.Export)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			c.Locals("client_ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Rate limiter for WebSocket connections (configurable via RATE_LIMIT_WEBSOCKET env var)
	app.Use("/ws", middleware.WebSocketRateLimiter(rateLimitConfig))

	// WebSocket config with allowed origins (same as CORS config)
	wsConfig := websocket.Config{
		Origins: strings.Split(allowedOrigins, ","),
	}
	app.Get("/ws", websocket.New(wsHandler.Handle, wsConfig))

	// Start server
	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("🔗 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	if cfg.ProbeEnabled {
		log.Printf("⏰ Source health probes enabled (schedule: %s)", cfg.ProbeSchedule)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		healthService.Stop()

		if redisService != nil {
			if err := redisService.Close(); err != nil {
				log.Printf("⚠️ Error closing Redis: %v", err)
			}
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// applySourceLimits pushes the registry's per-endpoint rate limits onto
// the upstream client. Safe to call again after a registry reload.
func applySourceLimits(client *upstream.Client, registry *services.SourceRegistry) {
	for _, key := range models.AllSourceKeys {
		endpoint, err := registry.Endpoint(key)
		if err != nil {
			continue
		}
		client.SetLimit(string(key), endpoint.RatePerSecond, endpoint.Burst)
	}
	rec := registry.Recommendation()
	client.SetLimit(services.RecommendationProbeName, rec.RatePerSecond, rec.Burst)
}

// startSourcesFileWatcher watches the sources file for changes and hot-reloads the registry
func startSourcesFileWatcher(filePath string, registry *services.SourceRegistry, client *upstream.Client) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}

	// Get absolute path for the file
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", filePath, err)
		watcher.Close()
		return
	}

	// Watch the directory containing the file (more reliable than watching the file directly)
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", filePath)

	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only react to changes to our specific file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// React to write and create events
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				// Debounce: cancel previous timer and set a new one
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					log.Printf("🔄 Detected changes in %s, reloading source registry...", filePath)

					if err := registry.Reload(); err != nil {
						log.Printf("❌ Failed to reload source registry: %v", err)
					} else {
						applySourceLimits(client, registry)
						log.Printf("✅ Source registry reloaded from %s", filePath)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
