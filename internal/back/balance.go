package back

import (
	"math/bits"
	"sort"
)

// TeamSize is the number of players per side, matches are always 5v5.
const TeamSize = 5

// RosterSize is the number of players a balanced match consumes.
const RosterSize = 2 * TeamSize

// topPartitionCount is how many of the best partitions the balancer picks
// from at random. Always taking the single most balanced split would pit the
// same ten players against each other the same way every time, trading a
// few rating points of balance buys match variety.
const topPartitionCount = 20

// A Team is five distinct players with their summed guild rating.
type Team struct {
	Players     []Player
	TotalRating int
}

func newTeam(players []Player) Team {
	total := 0
	for k := range players {
		total += players[k].Rating
	}

	return Team{Players: players, TotalRating: total}
}

// AverageRating is the mean guild rating of the team members, the value the
// rating engine consumes.
func (t Team) AverageRating() float64 {
	return float64(t.TotalRating) / float64(len(t.Players))
}

func (t Team) DiscordIDs() []string {
	ids := make([]string, 0, len(t.Players))
	for k := range t.Players {
		ids = append(ids, t.Players[k].DiscordID)
	}

	return ids
}

type partition struct {
	mask uint // bit i set = players[i] on the blue side
	diff int  // abs(sum(blue) - sum(red))
}

// balanceTeams splits exactly ten distinct players into the two most evenly
// rated fives. It enumerates every C(10,5) = 252 way of picking the blue
// side (mirrored partitions included, skipping none), ranks them by absolute
// total-rating difference with a stable sort (ties keep enumeration order),
// and picks uniformly at random among the topPartitionCount best using the
// injected intn. With a fixed source the result is fully deterministic.
func balanceTeams(players []Player, intn func(int) int) (blue, red Team, _ error) {
	if len(players) != RosterSize {
		return Team{}, Team{}, ErrInvalidInput{
			Field: "players",
			Value: len(players),
			Hint:  "exactly 10 players are required",
		}
	}

	seen := make(map[string]struct{}, len(players))
	for k := range players {
		if _, ok := seen[players[k].DiscordID]; ok {
			return Team{}, Team{}, ErrInvalidInput{
				Field: "players",
				Value: players[k].DiscordID,
				Hint:  "duplicate player",
			}
		}
		seen[players[k].DiscordID] = struct{}{}
	}

	total := 0
	for k := range players {
		total += players[k].Rating
	}

	partitions := make([]partition, 0, 252)
	for mask := uint(0); mask < 1<<RosterSize; mask++ {
		if bits.OnesCount(mask) != TeamSize {
			continue
		}

		blueTotal := 0
		for i := 0; i < RosterSize; i++ {
			if mask&(1<<i) != 0 {
				blueTotal += players[i].Rating
			}
		}

		diff := 2*blueTotal - total // blue - red
		if diff < 0 {
			diff = -diff
		}

		partitions = append(partitions, partition{mask: mask, diff: diff})
	}

	sort.SliceStable(partitions, func(i, j int) bool {
		return partitions[i].diff < partitions[j].diff
	})

	top := topPartitionCount
	if len(partitions) < top {
		top = len(partitions)
	}
	picked := partitions[intn(top)]

	bluePlayers := make([]Player, 0, TeamSize)
	redPlayers := make([]Player, 0, TeamSize)
	for i := 0; i < RosterSize; i++ {
		if picked.mask&(1<<i) != 0 {
			bluePlayers = append(bluePlayers, players[i])
		} else {
			redPlayers = append(redPlayers, players[i])
		}
	}

	return newTeam(bluePlayers), newTeam(redPlayers), nil
}
