package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"football-app-go/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRoundTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"1,3-5,Quarter-final", []string{"1", "3", "4", "5", "Quarter-final"}},
		{" 7 , , 8 ", []string{"7", "8"}},
		{"5-3", []string{}},
		{"2-2", []string{"2"}},
		{"1-600", []string{"1-600"}},
		{"Regular Season - 12", []string{"Regular Season - 12"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseRoundTokens(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRoundTokens(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDates(t *testing.T) {
	dates, err := ParseDates("2024-05-04, 2024-05-05,")
	if err != nil {
		t.Fatalf("ParseDates: %v", err)
	}
	if len(dates) != 2 || !dates[1].Equal(time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dates = %v", dates)
	}

	for _, bad := range []string{"2024-5-4", "04/05/2024", "2024-05-04,tomorrow", "2024-13-01"} {
		if _, err := ParseDates(bad); !IsValidation(err) {
			t.Errorf("ParseDates(%q) err = %v, want validation error", bad, err)
		}
	}
}

func TestValidateSelection(t *testing.T) {
	league := primitive.NewObjectID()
	season := primitive.NewObjectID()

	tests := []struct {
		name    string
		cfg     models.SelectionConfig
		wantErr string
	}{
		{
			name: "leagues",
			cfg:  models.SelectionConfig{Type: models.SelectionLeagues, LeagueIDs: []primitive.ObjectID{league}},
		},
		{
			name:    "leagues without any league",
			cfg:     models.SelectionConfig{Type: models.SelectionLeagues},
			wantErr: "Please select at least one league for league-based selection.",
		},
		{
			name: "rounds",
			cfg:  models.SelectionConfig{Type: models.SelectionRounds, RoundLeague: &league, RoundSeason: &season, RoundNumbers: "1-3"},
		},
		{
			name:    "rounds without season",
			cfg:     models.SelectionConfig{Type: models.SelectionRounds, RoundLeague: &league, RoundNumbers: "1"},
			wantErr: "Please select a season for round-based selection.",
		},
		{
			name:    "rounds with only a descending range",
			cfg:     models.SelectionConfig{Type: models.SelectionRounds, RoundLeague: &league, RoundSeason: &season, RoundNumbers: "9-2"},
			wantErr: "Please enter round numbers for round-based selection.",
		},
		{
			name:    "dates malformed",
			cfg:     models.SelectionConfig{Type: models.SelectionDates, MatchDates: "2024-05-04,05-05-2024"},
			wantErr: "Please enter dates in YYYY-MM-DD format.",
		},
		{
			name:    "dates empty",
			cfg:     models.SelectionConfig{Type: models.SelectionDates},
			wantErr: "Please enter match dates for date-based selection.",
		},
		{
			name: "mixed with dates only",
			cfg:  models.SelectionConfig{Type: models.SelectionMixed, MatchDates: "2024-05-04"},
		},
		{
			name:    "mixed with nothing",
			cfg:     models.SelectionConfig{Type: models.SelectionMixed, RoundLeague: &league},
			wantErr: "Please make at least one selection for mixed selection type.",
		},
		{
			name:    "unknown mode",
			cfg:     models.SelectionConfig{Type: "weekly"},
			wantErr: `Unknown selection type "weekly".`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("err = %v, want validation error", err)
			}
			if verr.Message != tt.wantErr {
				t.Errorf("message = %q, want %q", verr.Message, tt.wantErr)
			}
		})
	}
}

func TestBuildSelectionMixed(t *testing.T) {
	direct := primitive.NewObjectID()
	roundLeague := primitive.NewObjectID()
	season := primitive.NewObjectID()
	dateLeague := primitive.NewObjectID()

	sel, err := BuildSelection(models.SelectionConfig{
		Type:         models.SelectionMixed,
		LeagueIDs:    []primitive.ObjectID{direct, direct},
		RoundLeague:  &roundLeague,
		RoundSeason:  &season,
		RoundNumbers: "1,2,1",
		MatchDates:   "2024-05-04,2024-05-04",
		DateLeagues:  []primitive.ObjectID{dateLeague, direct},
	})
	if err != nil {
		t.Fatalf("BuildSelection: %v", err)
	}

	wantLeagues := []primitive.ObjectID{direct, roundLeague, dateLeague}
	if !reflect.DeepEqual(sel.LeagueIDs, wantLeagues) {
		t.Errorf("leagues = %v, want %v", sel.LeagueIDs, wantLeagues)
	}
	if len(sel.DirectLeagues) != 1 {
		t.Errorf("direct leagues = %v, want one", sel.DirectLeagues)
	}
	if len(sel.Rounds) != 2 || sel.Rounds[1].Round != "2" {
		t.Errorf("rounds = %+v", sel.Rounds)
	}
	if len(sel.Dates) != 1 || len(sel.Dates[0].LeagueIDs) != 2 {
		t.Errorf("dates = %+v", sel.Dates)
	}
}

func TestBuildSelectionKeepsOnlySelectedMode(t *testing.T) {
	league := primitive.NewObjectID()
	season := primitive.NewObjectID()

	sel, err := BuildSelection(models.SelectionConfig{
		Type:         models.SelectionDates,
		LeagueIDs:    []primitive.ObjectID{league},
		RoundLeague:  &league,
		RoundSeason:  &season,
		RoundNumbers: "4",
		MatchDates:   "2024-05-04",
	})
	if err != nil {
		t.Fatalf("BuildSelection: %v", err)
	}
	if len(sel.DirectLeagues) != 0 || len(sel.Rounds) != 0 {
		t.Errorf("selection kept other modes: %+v", sel)
	}
	if len(sel.LeagueIDs) != 0 {
		t.Errorf("unscoped dates added leagues %v", sel.LeagueIDs)
	}
}

func TestResolveUnionsSubModes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	premier := env.leagues.add("Premier League", true)
	laLiga := env.leagues.add("La Liga", true)
	inactive := env.leagues.add("Old League", false)
	season := primitive.NewObjectID()

	at := func(leagueID primitive.ObjectID, round string, kickoff time.Time) *models.Match {
		return env.matches.put(&models.Match{
			LeagueID: leagueID,
			SeasonID: &season,
			Round:    round,
			Kickoff:  kickoff,
			Status:   models.StatusNotStarted,
		})
	}
	day := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

	premierMatch := at(premier.ID, "Regular Season - 1", day.AddDate(0, 0, 7))
	roundMatch := at(laLiga.ID, "3", day.AddDate(0, 0, 14))
	at(laLiga.ID, "Regular Season - 3", day.AddDate(0, 0, 14))
	dayMatch := at(laLiga.ID, "5", day.Add(20*time.Hour))
	at(inactive.ID, "5", day.Add(18*time.Hour))

	group := &models.Group{
		Name:          "Mixed",
		DirectLeagues: []primitive.ObjectID{premier.ID},
		Rounds:        []models.RoundSelection{{LeagueID: laLiga.ID, SeasonID: season, Round: "3"}},
		Dates:         []models.DateSelection{{Date: day}},
	}

	leagues, matches, err := env.selectionService.Resolve(ctx, group)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if want := []primitive.ObjectID{premier.ID, laLiga.ID}; !reflect.DeepEqual(leagues, want) {
		t.Errorf("leagues = %v, want %v", leagues, want)
	}
	wantIDs := []primitive.ObjectID{dayMatch.ID, premierMatch.ID, roundMatch.ID}
	if len(matches) != len(wantIDs) {
		t.Fatalf("resolved %d matches, want %d", len(matches), len(wantIDs))
	}
	for i, m := range matches {
		if m.ID != wantIDs[i] {
			t.Errorf("match %d = %s, want %s", i, m.ID.Hex(), wantIDs[i].Hex())
		}
	}
}

func TestResolveEmptySelection(t *testing.T) {
	env := newTestEnv()
	env.scheduled(env.leagues.add("Premier League", true).ID, time.Hour)

	leagues, matches, err := env.selectionService.Resolve(context.Background(), &models.Group{Name: "Empty"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(leagues) != 0 || len(matches) != 0 {
		t.Errorf("Resolve = %v, %v; want nothing", leagues, matches)
	}
}
