package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"diamond-mines-backend/internal/config"
	"diamond-mines-backend/internal/handlers"
	"diamond-mines-backend/internal/middleware"
	"diamond-mines-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gameCfg, err := config.LoadGameConfig(cfg.GameConfigPath)
	if err != nil {
		log.Fatalf("Failed to load game config: %v", err)
	}

	scope, err := services.ParseScope(cfg.AttemptScope)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()

	var usedCodes services.UsedCodeStore
	switch cfg.UsedCodeBackend {
	case "postgres":
		store, err := services.NewPostgresUsedCodeStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open used code store: %v", err)
		}
		defer store.Close()
		usedCodes = store
	case "sqlite":
		store, err := services.NewSQLiteUsedCodeStore(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open used code store: %v", err)
		}
		defer store.Close()
		usedCodes = store
	default:
		usedCodes = redisService.UsedCodes()
	}
	log.Printf("Used codes stored in %s", cfg.UsedCodeBackend)

	audit := services.MultiAuditSink{services.LogAuditSink{}, redisService.AuditLog()}
	if cfg.AuditWebhookURL != "" {
		webhook := services.NewWebhookAuditSink(cfg.AuditWebhookURL)
		defer webhook.Wait()
		audit = append(audit, webhook)
	}

	jwtService := services.NewJWTService(cfg)
	gate := services.NewAccessGate(gameCfg, usedCodes, audit)
	hub := handlers.NewWebSocketHub()

	sessions := services.NewSessionManager(services.NewEngineFactory(services.FactoryDeps{
		Config:    gameCfg,
		Scope:     scope,
		Gate:      gate,
		Audit:     audit,
		Scheduler: services.TimerScheduler{},
		Random:    services.NewRandomSource(),
		FlagsFor: func(playerID string) services.FlagStore {
			return redisService.Flags(playerID)
		},
		PresentFor: hub.Presenter,
	}))

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if n := sessions.CleanupStale(cfg.SessionIdleTimeout); n > 0 {
				log.Printf("Evicted %d idle sessions", n)
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(jwtService, redisService)
	sessionHandler := handlers.NewSessionHandler(sessions, gameCfg)
	wsHandler := handlers.NewWebSocketHandler(sessions, hub)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/session", authHandler.CreateSession)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/config", sessionHandler.GetConfig)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		session := protected.Group("/session")
		{
			session.GET("", sessionHandler.GetSession)
			session.POST("/unlock", sessionHandler.Unlock)
			session.POST("/round", sessionHandler.StartRound)
			session.POST("/reveal", sessionHandler.Reveal)
			session.POST("/logout", sessionHandler.Logout)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
