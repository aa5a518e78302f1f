package back // nolint:testpackage

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenerateTeams(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)
	roster := append(append([]string{}, blue...), red...)

	back.seedRand(42)
	blueTeam, redTeam, err := back.GenerateTeams(testGuildID, roster)
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]struct{}{}
	for _, id := range append(blueTeam.DiscordIDs(), redTeam.DiscordIDs()...) {
		seen[id] = struct{}{}
	}
	if len(seen) != RosterSize {
		t.Errorf("expected %d distinct players, got %d", RosterSize, len(seen))
	}

	// Same seed, same split.
	back.seedRand(42)
	blueAgain, _, err := back.GenerateTeams(testGuildID, roster)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(blueTeam.DiscordIDs()) != fmt.Sprint(blueAgain.DiscordIDs()) {
		t.Errorf("same seed produced different teams: %v vs %v",
			blueTeam.DiscordIDs(), blueAgain.DiscordIDs())
	}
}

func TestGenerateTeamsRequiresRegisteredPlayers(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)
	roster := append(append([]string{}, blue...), red...)
	roster[3] = "discord-stranger"

	_, _, err := back.GenerateTeams(testGuildID, roster)
	var incomplete ErrIncompleteRoster
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected ErrIncompleteRoster, got %v", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "discord-stranger" {
		t.Errorf("unexpected missing players: %v", incomplete.Missing)
	}
}

func TestGenerateTeamsPersistsNothing(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)
	roster := append(append([]string{}, blue...), red...)

	if _, _, err := back.GenerateTeams(testGuildID, roster); err != nil {
		t.Fatal(err)
	}

	for _, id := range roster {
		if got := playerRating(t, back, id); got != DefaultRating {
			t.Errorf("generating teams moved %s to %d", id, got)
		}
	}

	history, err := back.GetMatchHistory(testGuildID, roster[0], 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("generating teams recorded %d matches", len(history))
	}
}
