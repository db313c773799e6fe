package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"football-app-go/config"
	"football-app-go/database"
	"football-app-go/events"
	"football-app-go/handlers"
	"football-app-go/logging"
	"football-app-go/metrics"
	"football-app-go/services"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warnf("Failed to close database: %v", err)
		}
	}()

	// Repositories
	seasonRepo := database.NewMongoSeasonRepository(db)
	leagueRepo := database.NewMongoLeagueRepository(db)
	teamRepo := database.NewMongoTeamRepository(db)
	matchRepo := database.NewMongoMatchRepository(db)
	predictionRepo := database.NewMongoPredictionRepository(db)
	groupRepo := database.NewMongoGroupRepository(db)
	membershipRepo := database.NewMongoMembershipRepository(db)
	invitationRepo := database.NewMongoInvitationRepository(db)
	userRepo := database.NewMongoUserRepository(db)

	collector := metrics.New()
	publisher := newPublisher(cfg)
	defer publisher.Close()
	clock := clockwork.NewRealClock()

	// Services
	seasonService := services.NewSeasonService(seasonRepo, leagueRepo, publisher)
	scoringService := services.NewScoringService(matchRepo, predictionRepo, collector)
	statsService := services.NewStatsService(predictionRepo, matchRepo, groupRepo, membershipRepo, userRepo, leagueRepo, collector)
	selectionService := services.NewSelectionService(matchRepo, leagueRepo)
	predictionService := services.NewPredictionService(matchRepo, predictionRepo, groupRepo, membershipRepo, seasonService, publisher, collector, clock)
	standingsService := services.NewStandingsService(teamRepo, matchRepo, seasonService, clock)
	leagueService := services.NewLeagueService(leagueRepo, teamRepo)
	groupService := services.NewGroupService(groupRepo, membershipRepo, invitationRepo, userRepo, statsService, selectionService, publisher, collector, clock, cfg.App.JoinCodeAttempts)
	invitationService := services.NewInvitationService(invitationRepo, userRepo, membershipRepo, groupService, collector, clock)
	userService := services.NewUserService(userRepo, membershipRepo, predictionRepo, statsService)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, clock)
	completion := services.NewMatchCompletion(matchRepo, predictionRepo, scoringService, statsService, publisher)

	if cfg.App.WatchMatchChanges {
		watcher := services.NewChangeStreamWatcher(db, completion.HandleFinished, clock)
		go watcher.Run(ctx)
	}

	opts := handlers.RouterOptions{
		Health:       db,
		BehindProxy:  cfg.Server.BehindProxy,
		SecureCookie: !cfg.App.IsDevelopment,
		TokenExpiry:  cfg.Auth.TokenExpiry,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = collector
		opts.MetricsPath = cfg.Metrics.Path
	}
	router := handlers.NewRouter(handlers.Services{
		Auth:        authService,
		Seasons:     seasonService,
		Leagues:     leagueService,
		Standings:   standingsService,
		Predictions: predictionService,
		Groups:      groupService,
		Invitations: invitationService,
		Users:       userService,
	}, opts)

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Graceful shutdown failed: %v", err)
	}
	logging.Info("Server stopped")
}

func newPublisher(cfg *config.Config) events.Publisher {
	if !cfg.Events.Enabled {
		return events.NopPublisher{}
	}
	publisher, err := events.NewNATSPublisher(cfg.ToEventsConfig())
	if err != nil {
		logging.Warnf("Event publishing disabled, NATS unavailable: %v", err)
		return events.NopPublisher{}
	}
	return publisher
}
