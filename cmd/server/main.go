package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docintel/answer-engine/internal/api/handlers"
	"github.com/docintel/answer-engine/internal/config"
	"github.com/docintel/answer-engine/internal/database"
	"github.com/docintel/answer-engine/internal/documents"
	"github.com/docintel/answer-engine/internal/health"
	"github.com/docintel/answer-engine/internal/llm"
	"github.com/docintel/answer-engine/internal/middleware"
	"github.com/docintel/answer-engine/internal/orchestrator"
	"github.com/docintel/answer-engine/internal/repository"
	"github.com/docintel/answer-engine/internal/search"
	"github.com/docintel/answer-engine/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting answer engine server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateSearch(); err != nil {
		logger.WithError(err).Fatal("Search configuration validation failed")
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.WithError(err).Fatal("LLM configuration validation failed")
	}

	// Initialize database and cache
	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	// Search provider chain, in configured order
	providers := make([]search.Provider, 0, len(cfg.Search.Providers))
	for _, name := range cfg.Search.Providers {
		switch name {
		case "serper":
			providers = append(providers, search.NewSerperProvider(cfg.Search.SerperKey, cfg.Search.Timeout, cfg.Search.MaxResults, cfg.Search.MaxMedia, logger))
		case "brave":
			providers = append(providers, search.NewBraveProvider(cfg.Search.BraveKey, cfg.Search.Timeout, cfg.Search.MaxResults, cfg.Search.MaxMedia, logger))
		}
	}
	chain := search.NewChain(logger, providers...)

	// Generation backend
	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, logger)
	generator := llm.NewGenerator(llmClient, logger)

	// Usage recorder and orchestrator
	recorder := orchestrator.NewRecorder(repoManager.QueryLog, 256, logger)
	defer recorder.Close()

	docStore := documents.NewStore(dbManager.DB, logger)
	orch := orchestrator.New(chain, docStore, generator, recorder, orchestrator.Options{
		SearchTimeout: cfg.Search.Timeout,
		ContextOpts:   cfg.ContextOptions(),
	}, logger)

	// HTTP handlers
	chatHandler := handlers.NewChatHandler(orch, repoManager, cache, cfg.Features.CacheTTL, logger)
	backends := map[string]string{"llm_backend": cfg.LLM.BaseURL}
	for _, p := range chain.Providers() {
		backends["search_"+p.Name()] = p.BaseURL()
	}
	checker := health.NewHealthChecker(dbManager, repoManager.SystemHealth, logger, backends)
	healthHandler := handlers.NewHealthHandler(checker, logger)

	router := setupRouter(cfg, chatHandler, healthHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go checker.PeriodicHealthCheck(ctx, 30*time.Second)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}

func setupRouter(cfg *config.Config, chatHandler *handlers.ChatHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	if cfg.Features.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.Features.RateLimitPerMin)
		router.Use(limiter.RateLimit())
	}

	router.GET("/health", healthHandler.HandleLiveness)
	router.GET("/health/detailed", healthHandler.HandleDetailed)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireOrganization())
	{
		api.POST("/chat", chatHandler.HandleChat)
		api.POST("/chat/stream", chatHandler.HandleChatStream)
		api.GET("/suggestions", chatHandler.HandleSuggestions)
	}

	return router
}
