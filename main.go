package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/llm"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/memory"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/adapter/social"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/config"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/engine"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/eventbus"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/registry"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/stage"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/store"
	v1 "github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/transport/http/v1"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/transport/ws"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting campaign engine...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("LLM URL: %s", cfg.LLMURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize adapters
	generator := llm.NewGenerator(cfg.LLMURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)

	var memStore memory.Store
	if os.Getenv(llm.EnvMode) == llm.ModeMock || cfg.MemoryURL == "" {
		log.Println("Using mock memory store")
		memStore = memory.NewMockStore()
	} else {
		memStore = memory.NewClient(cfg.MemoryURL, cfg.MemoryAPIKey, cfg.MemoryTimeout)
	}

	var poster social.Poster
	if os.Getenv(llm.EnvMode) == llm.ModeMock || cfg.SocialAccessToken == "" {
		log.Println("Using mock social poster")
		poster = social.NewMockPoster()
	} else {
		poster = social.NewClient(social.Credentials{
			AccessToken:  cfg.SocialAccessToken,
			RefreshToken: cfg.SocialRefreshToken,
			ClientID:     cfg.SocialClientID,
			ClientSecret: cfg.SocialClientSecret,
		}, cfg.SocialAPIURL, cfg.SocialOAuthURL, cfg.SocialTimeout)
	}

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize pipeline workers in stage order
	workers := []stage.Worker{
		stage.NewResearcher(memStore),
		stage.NewWriter(generator),
		stage.NewPublisher(poster, memStore, policyEngine, cfg.MemoryStoreDrafts),
	}

	// Initialize engine
	reg := registry.New()
	bus := eventbus.New(cfg.StreamBuffer)
	eng := engine.New(reg, bus, db, workers, cfg.StageTimeout)

	// Initialize handlers
	h := v1.NewHandler(eng, db, cfg.SyncMaxWait)
	wsServer := ws.NewServer(ws.Config{
		PingInterval:   cfg.PingInterval,
		WriteTimeout:   cfg.WriteTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		MaxMessageSize: cfg.MaxMessageSize,
	}, bus, eng)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)
	wsServer.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down campaign engine...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Campaign engine stopped")
}
