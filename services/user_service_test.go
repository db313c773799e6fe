package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTopUsers(t *testing.T) {
	env := newTestEnv()
	alice := env.users.add("alice")
	bob := env.users.add("bob")
	alice.Password = "hash"
	alice.Stats.Points = 3
	bob.Stats.Points = 9

	users, err := env.userService.TopUsers(context.Background())
	if err != nil {
		t.Fatalf("TopUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "bob" {
		t.Errorf("users = %+v", users)
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("%s leaked a password hash", u.Username)
		}
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	premier := env.leagues.add("Premier League", true)
	alice := env.users.add("alice")
	group := env.leaguesGroup("Club", alice.ID, premier.ID)

	m := env.scheduled(premier.ID, time.Hour)
	env.predict(alice.ID, m, 2, 1)
	env.finish(m, 2, 1)
	env.predict(alice.ID, env.scheduled(premier.ID, 3*time.Hour), 0, 0)

	profile, err := env.userService.Profile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Stats.Points != 5 || profile.Stats.Accuracy != 100 {
		t.Errorf("stats = %+v", profile.Stats)
	}
	if env.users.byID[alice.ID].Stats.Points != 5 {
		t.Error("profile statistics were not stored")
	}
	if len(profile.Groups) != 1 || profile.Groups[0].GroupID != group.ID {
		t.Errorf("groups = %+v", profile.Groups)
	}
	if len(profile.LeagueStats) != 1 || profile.LeagueStats[0].LeagueName != "Premier League" {
		t.Errorf("league stats = %+v", profile.LeagueStats)
	}
	if len(profile.RecentPredictions) != 2 {
		t.Errorf("recent predictions = %d, want 2", len(profile.RecentPredictions))
	}

	if _, err := env.userService.Profile(ctx, primitive.NewObjectID()); !isNotFound(err) {
		t.Errorf("unknown user err = %v, want not found", err)
	}
}
