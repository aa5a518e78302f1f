package back

import (
	"strings"

	"gopkg.in/guregu/null.v4"
)

// tierRanks orders the ranked tiers, 100 rating points per tier. Master and
// above have no divisions and use fixed seeds instead.
var tierRanks = map[string]int{ // nolint:gochecknoglobals
	"IRON":     1,
	"BRONZE":   2,
	"SILVER":   3,
	"GOLD":     4,
	"PLATINUM": 5,
	"EMERALD":  6,
	"DIAMOND":  7,
}

// divisionBonuses adds 25 rating points per division inside a tier.
var divisionBonuses = map[string]int{ // nolint:gochecknoglobals
	"I":   75,
	"II":  50,
	"III": 25,
	"IV":  0,
}

// seedRating converts a ranked tier/division to the initial guild rating.
// Unknown or missing tiers seed at DefaultRating so unranked players start
// in the middle of the pack.
func seedRating(tier, division null.String) int {
	if !tier.Valid {
		return DefaultRating
	}

	switch strings.ToUpper(tier.String) {
	case "MASTER":
		return 800
	case "GRANDMASTER":
		return 900
	case "CHALLENGER":
		return 1000
	}

	rank, ok := tierRanks[strings.ToUpper(tier.String)]
	if !ok {
		return DefaultRating
	}

	bonus := 0
	if division.Valid {
		bonus = divisionBonuses[strings.ToUpper(division.String)]
	}

	return rank*100 + bonus
}
