package main

import (
	"context"
	"flag"
	"time"

	"football-app-go/config"
	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/services"
)

func main() {
	seedFile := flag.String("seed", "", "YAML seed file; defaults to SEED_FILE, then the built-in seasons")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	logger := logging.WithPrefix("PopulateSeasons")

	path := *seedFile
	if path == "" {
		path = cfg.App.SeedFile
	}
	seed := config.DefaultSeed()
	if path != "" {
		if seed, err = config.LoadSeed(path); err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Infof("Loaded %d seasons from %s", len(seed.Seasons), path)
	}

	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seasons := services.NewSeasonService(database.NewMongoSeasonRepository(db), database.NewMongoLeagueRepository(db), nil)
	result, err := seasons.PopulateSeasons(ctx, seed)
	if err != nil {
		logger.Fatalf("Failed to populate seasons: %v", err)
	}

	logger.Infof("Seasons created: %d, updated: %d", result.Created, result.Updated)
	if result.Current != nil {
		logger.Infof("Current season: %s", result.Current.Name)
	}
}
