package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/orbitwatch/orbitgraph/internal/cache"
	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core"
	"github.com/orbitwatch/orbitgraph/internal/core/query"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
	"github.com/orbitwatch/orbitgraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx := context.Background()

	// The graph store is required: refusing to start beats serving errors.
	store, err := driver.NewBoltStore(cfg.Store, logg)
	if err != nil {
		logg.Fatal("failed to connect to graph store", "error", err)
	}
	defer store.Close(ctx)

	if err := store.BuildIndices(ctx); err != nil {
		logg.Warn("index creation incomplete", "error", err)
	}

	responseCache := cache.New(ctx, cfg.Cache, logg)
	defer responseCache.Close()

	engine := core.NewEngine(store, cfg, logg)
	svc := query.NewService(store, cfg, logg)
	srv := server.NewServer(engine, svc, responseCache, cfg, logg)

	r := srv.SetupRouter()
	logg.Info("starting server", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logg.Fatal("server exited", "error", err)
	}
}
