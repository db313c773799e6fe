package main

import (
	"context"
	"flag"
	"os"
	"time"

	"football-app-go/config"
	"football-app-go/database"
	"football-app-go/logging"
	"football-app-go/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	seasonName := flag.String("season", "", "season name, e.g. 2024/2025")
	leagueName := flag.String("league", "", "league name; empty selects the global season")
	flag.Parse()

	if *seasonName == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	logger := logging.WithPrefix("SetCurrentSeason")

	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leagues := database.NewMongoLeagueRepository(db)
	seasons := services.NewSeasonService(database.NewMongoSeasonRepository(db), leagues, nil)

	var leagueID *primitive.ObjectID
	if *leagueName != "" {
		league, err := leagues.GetByName(ctx, *leagueName)
		if err != nil {
			logger.Fatalf("Failed to look up league %q: %v", *leagueName, err)
		}
		if league == nil {
			logger.Fatalf("League %q does not exist", *leagueName)
		}
		leagueID = &league.ID
	}

	season, err := seasons.SetCurrentByName(ctx, *seasonName, leagueID)
	if err != nil {
		logger.Fatalf("Failed to set current season: %v", err)
	}
	logger.Infof("Current season is now %s", season.Name)
}
