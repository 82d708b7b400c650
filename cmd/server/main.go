package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/unalkalkan/SceneForge/internal/api"
	"github.com/unalkalkan/SceneForge/internal/assets"
	"github.com/unalkalkan/SceneForge/internal/config"
	"github.com/unalkalkan/SceneForge/internal/health"
	"github.com/unalkalkan/SceneForge/internal/production"
	"github.com/unalkalkan/SceneForge/internal/project"
	"github.com/unalkalkan/SceneForge/internal/provider"
	"github.com/unalkalkan/SceneForge/internal/storage"
	"github.com/unalkalkan/SceneForge/pkg/types"
)

const version = "0.1.0"

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file (defaults plus SF_ env vars when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting SceneForge Server v%s", version)

	// Initialize storage adapter
	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create storage adapter: %v", err)
	}
	defer storageAdapter.Close()
	log.Printf("Storage adapter initialized: %s", cfg.Storage.Adapter)

	publisher := newPublisher(cfg.Assets, storageAdapter)
	log.Printf("Asset publisher initialized: %s", cfg.Assets.Backend)

	// Initialize provider registry
	providerRegistry := provider.NewRegistry()
	if err := providerRegistry.InitializeProviders(cfg.Providers, config.JobSettings(cfg)); err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}
	defer providerRegistry.Close()

	log.Printf("Providers initialized:")
	log.Printf("  Text:  %v", providerRegistry.ListText())
	log.Printf("  Image: %v", providerRegistry.ListImage())
	log.Printf("  Video: %v", providerRegistry.ListVideo())
	log.Printf("  Voice: %v", providerRegistry.ListVoice())

	orchestrator := production.NewOrchestrator(providerRegistry, publisher)
	planRepo := project.NewRepository(storageAdapter)

	healthHandler := health.NewHandler(version)
	healthHandler.Register("storage", health.StorageCheck(storageAdapter))
	healthHandler.Register("providers", health.ProvidersCheck(providerRegistry))

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler.Routes(router)
	api.NewServer(orchestrator, providerRegistry, planRepo, publisher).Routes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func loadConfig(path string) (*types.Config, error) {
	if path == "" {
		log.Printf("No config file given, using defaults and environment")
		return config.FromEnv()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Configuration loaded from: %s", path)
	return cfg, nil
}

func newPublisher(cfg types.AssetsConfig, adapter storage.Adapter) assets.Publisher {
	if cfg.Backend == "storage" {
		return assets.NewStorageStore(cfg.URLPrefix, adapter)
	}
	return assets.NewMemoryStore(cfg.URLPrefix, time.Duration(cfg.TTLMinutes)*time.Minute)
}
