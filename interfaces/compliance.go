package interfaces

import (
	"football-app-go/services"
)

// Interface compliance checks - these will fail to compile if services don't implement interfaces
var (
	_ AuthService       = (*services.AuthService)(nil)
	_ SeasonService     = (*services.SeasonService)(nil)
	_ LeagueService     = (*services.LeagueService)(nil)
	_ StandingsService  = (*services.StandingsService)(nil)
	_ PredictionService = (*services.PredictionService)(nil)
	_ GroupService      = (*services.GroupService)(nil)
	_ InvitationService = (*services.InvitationService)(nil)
	_ UserService       = (*services.UserService)(nil)
)
