// Command rebuild recomputes relationship edge sets from canonical satellite
// records. It is the batch counterpart of the admin rebuild endpoint, meant
// for cron jobs and operators.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

func main() {
	var (
		cfgPath  = flag.String("config", "config/config.toml", "path to the TOML configuration file")
		typeName = flag.String("type", "", "relationship type to rebuild (constellation, proximity, registration, country); empty rebuilds all")
		dryRun   = flag.Bool("dry-run", false, "compute edge counts without writing to the store")
	)
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx := context.Background()
	store, err := driver.NewBoltStore(cfg.Store, logg)
	if err != nil {
		logg.Fatal("failed to connect to graph store", "error", err)
	}
	defer store.Close(ctx)

	engine := core.NewEngine(store, cfg, logg)

	types := model.RebuildableTypes()
	if *typeName != "" {
		relType, ok := model.ParseRelationshipType(*typeName)
		if !ok {
			logg.Fatal("unknown relationship type", "type", *typeName)
		}
		types = []model.RelationshipType{relType}
	}

	failed := false
	for _, relType := range types {
		if *dryRun {
			res, err := engine.Plan(ctx, relType)
			if err != nil {
				logg.Error("plan failed", "type", string(relType), "error", err)
				failed = true
				continue
			}
			fmt.Printf("%-14s would write %d edges, %d auxiliary nodes\n", relType, res.Edges, res.AuxNodes)
			continue
		}

		res, err := engine.Rebuild(ctx, relType)
		if err != nil {
			logg.Error("rebuild failed", "type", string(relType), "error", err)
			failed = true
			continue
		}
		fmt.Printf("%-14s wrote %d edges, %d auxiliary nodes in %s (run %s)\n",
			relType, res.Edges, res.AuxNodes, res.Duration.Round(time.Millisecond), res.RunID)
	}

	if failed {
		os.Exit(1)
	}
}
