package back // nolint:testpackage

import (
	"errors"
	"fmt"
	"sort"
	"testing"
)

func testRoster(ratings ...int) []Player {
	players := make([]Player, 0, len(ratings))
	for k, v := range ratings {
		p := NewPlayer(fmt.Sprintf("discord-%d", k), fmt.Sprintf("Player %d", k))
		p.Rating = v
		players = append(players, p)
	}

	return players
}

func TestBalanceTeamsPartitionsRoster(t *testing.T) {
	players := testRoster(1000, 1100, 900, 1200, 800, 1050, 950, 1150, 850, 1000)

	blue, red, err := balanceTeams(players, func(int) int { return 0 })
	if err != nil {
		t.Fatal(err)
	}

	if len(blue.Players) != TeamSize || len(red.Players) != TeamSize {
		t.Fatalf("expected two teams of %d, got %d and %d", TeamSize, len(blue.Players), len(red.Players))
	}

	seen := map[string]int{}
	for _, p := range append(blue.Players, red.Players...) {
		seen[p.DiscordID]++
	}
	if len(seen) != RosterSize {
		t.Errorf("expected %d distinct players across both teams, got %d", RosterSize, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("player %s assigned %d times", id, count)
		}
	}

	if blue.TotalRating+red.TotalRating != 10000 {
		t.Errorf("team totals don't add up to the roster total: %d + %d", blue.TotalRating, red.TotalRating)
	}
}

func TestBalanceTeamsAlwaysMostBalancedWhenForced(t *testing.T) {
	players := testRoster(1000, 1100, 900, 1200, 800, 1050, 950, 1150, 850, 1000)

	// intn pinned to 0 always picks the single most balanced partition, and
	// the roster total is even so a perfect split may exist.
	blue, red, err := balanceTeams(players, func(int) int { return 0 })
	if err != nil {
		t.Fatal(err)
	}

	if blue.TotalRating != red.TotalRating {
		t.Errorf("expected a perfect split, got %d vs %d", blue.TotalRating, red.TotalRating)
	}
}

func TestBalanceTeamsDeterministicWithFixedSource(t *testing.T) {
	players := testRoster(1432, 987, 1105, 1250, 864, 1033, 1178, 921, 1066, 1300)
	intn := func(int) int { return 7 }

	blue1, red1, err := balanceTeams(players, intn)
	if err != nil {
		t.Fatal(err)
	}
	blue2, red2, err := balanceTeams(players, intn)
	if err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(blue1.DiscordIDs()) != fmt.Sprint(blue2.DiscordIDs()) {
		t.Errorf("blue teams differ between runs: %v vs %v", blue1.DiscordIDs(), blue2.DiscordIDs())
	}
	if fmt.Sprint(red1.DiscordIDs()) != fmt.Sprint(red2.DiscordIDs()) {
		t.Errorf("red teams differ between runs: %v vs %v", red1.DiscordIDs(), red2.DiscordIDs())
	}
}

func TestBalanceTeamsPicksWithinTopPartitions(t *testing.T) {
	players := testRoster(1432, 987, 1105, 1250, 864, 1033, 1178, 921, 1066, 1300)

	total := 0
	for k := range players {
		total += players[k].Rating
	}

	// Rank every C(10,5) partition by hand and keep the 20 best diffs.
	diffs := make([]int, 0, 252)
	for mask := uint(0); mask < 1<<RosterSize; mask++ {
		count := 0
		blueTotal := 0
		for i := 0; i < RosterSize; i++ {
			if mask&(1<<i) != 0 {
				count++
				blueTotal += players[i].Rating
			}
		}
		if count != TeamSize {
			continue
		}

		diff := 2*blueTotal - total
		if diff < 0 {
			diff = -diff
		}
		diffs = append(diffs, diff)
	}
	sort.Ints(diffs)
	worstAllowed := diffs[topPartitionCount-1]

	for pick := 0; pick < topPartitionCount; pick++ {
		blue, red, err := balanceTeams(players, func(int) int { return pick })
		if err != nil {
			t.Fatal(err)
		}

		diff := blue.TotalRating - red.TotalRating
		if diff < 0 {
			diff = -diff
		}
		if diff > worstAllowed {
			t.Errorf("pick %d produced diff %d, worse than the 20th best (%d)", pick, diff, worstAllowed)
		}
	}
}

func TestBalanceTeamsRejectsBadRosters(t *testing.T) {
	if _, _, err := balanceTeams(testRoster(1000, 1000, 1000), nil); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for a short roster, got %v", err)
	}

	players := testRoster(1000, 1100, 900, 1200, 800, 1050, 950, 1150, 850, 1000)
	players[9].DiscordID = players[0].DiscordID
	if _, _, err := balanceTeams(players, nil); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for a duplicate player, got %v", err)
	}
}

func TestTeamAverageRating(t *testing.T) {
	team := newTeam(testRoster(1000, 1100, 900, 1200, 800))
	if got := team.AverageRating(); got != 1000 {
		t.Errorf("AverageRating() = %f, expected 1000", got)
	}
}
