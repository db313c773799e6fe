package handlers

import (
	"net/http"
	"time"

	"football-app-go/interfaces"
	"football-app-go/metrics"
	"football-app-go/middleware"

	"github.com/gorilla/mux"
)

const idPattern = "{id:[0-9a-fA-F]{24}}"

// Services groups everything the router serves
type Services struct {
	Auth        interfaces.AuthService
	Seasons     interfaces.SeasonService
	Leagues     interfaces.LeagueService
	Standings   interfaces.StandingsService
	Predictions interfaces.PredictionService
	Groups      interfaces.GroupService
	Invitations interfaces.InvitationService
	Users       interfaces.UserService
}

// RouterOptions holds the non-service router settings
type RouterOptions struct {
	Health       HealthChecker
	Metrics      *metrics.Collector
	MetricsPath  string
	BehindProxy  bool
	SecureCookie bool
	TokenExpiry  time.Duration
}

// NewRouter wires every API route
func NewRouter(svc Services, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(opts.Metrics))
	r.Use(middleware.SecurityMiddleware(opts.BehindProxy))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: "route not found"})
	})

	r.HandleFunc("/healthz", Health(opts.Health)).Methods(http.MethodGet)
	if opts.Metrics != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	auth := middleware.NewAuthMiddleware(svc.Auth, Unauthorized)
	api := r.PathPrefix("/api").Subrouter()
	private := api.NewRoute().Subrouter()
	private.Use(auth.RequireAuth)

	authHandler := NewAuthHandler(svc.Auth, opts.SecureCookie, opts.TokenExpiry)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	private.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	leagues := NewLeagueHandler(svc.Seasons, svc.Leagues, svc.Standings)
	api.HandleFunc("/seasons", leagues.ListSeasons).Methods(http.MethodGet)
	api.HandleFunc("/seasons/current", leagues.CurrentSeason).Methods(http.MethodGet)
	api.HandleFunc("/leagues", leagues.ListLeagues).Methods(http.MethodGet)
	api.HandleFunc("/leagues/"+idPattern, leagues.GetLeague).Methods(http.MethodGet)
	api.HandleFunc("/leagues/"+idPattern+"/teams", leagues.Teams).Methods(http.MethodGet)
	api.HandleFunc("/leagues/"+idPattern+"/standings", leagues.Standings).Methods(http.MethodGet)
	api.HandleFunc("/leagues/"+idPattern+"/rounds", leagues.Rounds).Methods(http.MethodGet)
	api.HandleFunc("/teams/"+idPattern, leagues.Team).Methods(http.MethodGet)

	predictions := NewPredictionHandler(svc.Predictions)
	private.HandleFunc("/predictions", predictions.Center).Methods(http.MethodGet)
	private.HandleFunc("/predictions", predictions.Save).Methods(http.MethodPost)
	private.HandleFunc("/predictions/bulk", predictions.Bulk).Methods(http.MethodPost)
	private.HandleFunc("/predictions/mine", predictions.Mine).Methods(http.MethodGet)

	groups := NewGroupHandler(svc.Groups, svc.Invitations)
	api.HandleFunc("/groups", groups.ListPublic).Methods(http.MethodGet)
	private.HandleFunc("/groups", groups.Create).Methods(http.MethodPost)
	private.HandleFunc("/groups/mine", groups.Mine).Methods(http.MethodGet)
	private.HandleFunc("/groups/join", groups.JoinByCode).Methods(http.MethodPost)
	api.HandleFunc("/groups/"+idPattern, groups.Get).Methods(http.MethodGet)
	api.HandleFunc("/groups/"+idPattern+"/leaderboard", groups.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/groups/"+idPattern+"/members", groups.Members).Methods(http.MethodGet)
	api.HandleFunc("/groups/"+idPattern+"/matches", groups.Matches).Methods(http.MethodGet)
	private.HandleFunc("/groups/"+idPattern+"/join", groups.Join).Methods(http.MethodPost)
	private.HandleFunc("/groups/"+idPattern+"/leave", groups.Leave).Methods(http.MethodPost)
	private.HandleFunc("/groups/"+idPattern+"/selection", groups.UpdateSelection).Methods(http.MethodPut)
	private.HandleFunc("/groups/"+idPattern+"/invitations", groups.Invite).Methods(http.MethodPost)

	private.HandleFunc("/invitations", groups.PendingInvitations).Methods(http.MethodGet)
	private.HandleFunc("/invitations/token/{token}", groups.InvitationByToken).Methods(http.MethodGet)
	private.HandleFunc("/invitations/"+idPattern+"/accept", groups.AcceptInvitation).Methods(http.MethodPost)
	private.HandleFunc("/invitations/"+idPattern+"/decline", groups.DeclineInvitation).Methods(http.MethodPost)

	users := NewUserHandler(svc.Users)
	api.HandleFunc("/users", users.List).Methods(http.MethodGet)
	api.HandleFunc("/users/"+idPattern, users.Get).Methods(http.MethodGet)
	private.HandleFunc("/profile", users.Profile).Methods(http.MethodGet)

	return r
}
