package main

import (
	"flag"
	"strings"

	"football-app-go/config"
	"football-app-go/database"
	"football-app-go/logging"

	"go.mongodb.org/mongo-driver/bson"
)

var collections = []string{
	database.SeasonsCollection,
	database.LeaguesCollection,
	database.TeamsCollection,
	database.MatchesCollection,
	database.PredictionsCollection,
	database.GroupsCollection,
	database.MembershipsCollection,
	database.InvitationsCollection,
	database.UsersCollection,
}

func main() {
	drop := flag.String("drop", "", "collection:index to drop before recreating indexes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	logger := logging.WithPrefix("Indexes")

	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	ctx, cancel := database.WithLongTimeout()
	defer cancel()

	if *drop != "" {
		collection, index, ok := splitDrop(*drop)
		if !ok {
			logger.Fatalf("--drop expects collection:index, got %q", *drop)
		}
		if _, err := db.GetCollection(collection).Indexes().DropOne(ctx, index); err != nil {
			logger.Warnf("Could not drop %s on %s (may not exist): %v", index, collection, err)
		} else {
			logger.Infof("Dropped %s on %s", index, collection)
		}
	}

	// Each repository creates its indexes when constructed
	database.NewMongoSeasonRepository(db)
	database.NewMongoLeagueRepository(db)
	database.NewMongoTeamRepository(db)
	database.NewMongoMatchRepository(db)
	database.NewMongoPredictionRepository(db)
	database.NewMongoGroupRepository(db)
	database.NewMongoMembershipRepository(db)
	database.NewMongoInvitationRepository(db)
	database.NewMongoUserRepository(db)

	for _, name := range collections {
		cursor, err := db.GetCollection(name).Indexes().List(ctx)
		if err != nil {
			logger.Errorf("Failed to list indexes of %s: %v", name, err)
			continue
		}
		var indexes []bson.M
		if err := cursor.All(ctx, &indexes); err != nil {
			logger.Errorf("Failed to read indexes of %s: %v", name, err)
			continue
		}
		logger.Infof("%s:", name)
		for _, index := range indexes {
			logger.Infof("  %v %v", index["name"], index["key"])
		}
	}
}

func splitDrop(value string) (string, string, bool) {
	collection, index, ok := strings.Cut(value, ":")
	return collection, index, ok && collection != "" && index != ""
}
