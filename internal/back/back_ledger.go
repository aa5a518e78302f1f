package back

import (
	"fmt"
	"log"
	"math"
	"time"

	"poro/internal/util"

	"github.com/jmoiron/sqlx"
)

// MMRChanges is what a recorded or corrected match did to its participants.
type MMRChanges struct {
	MatchID util.UUIDAsBlob
	Winner  Side

	// Change is the absolute per-player rating movement.
	Change int

	// Deltas maps Discord IDs to the signed delta that was applied.
	Deltas map[string]int
}

// RecordMatch reports the outcome of a 5v5 between the two given rosters,
// moves every participant's guild rating by the Elo delta of the team
// averages, and appends an immutable match row holding a snapshot of the
// ratings as they were before the update. Either everything is applied or,
// on any failure, nothing is.
func (b *Back) RecordMatch(
	guildID string,
	blueDiscordIDs, redDiscordIDs []string,
	winner Side,
) (MMRChanges, error) {
	if !winner.IsValid() {
		return MMRChanges{}, ErrInvalidInput{
			Field: "winner",
			Value: int(winner),
			Hint:  "winner must be the blue or red team",
		}
	}
	if len(blueDiscordIDs) != TeamSize || len(redDiscordIDs) != TeamSize {
		return MMRChanges{}, ErrInvalidInput{
			Field: "teams",
			Value: fmt.Sprintf("%dv%d", len(blueDiscordIDs), len(redDiscordIDs)),
			Hint:  "both teams must have exactly 5 players",
		}
	}

	var ret MMRChanges
	if err := b.transaction(func(tx *sqlx.Tx) error {
		roster, err := getRosterByDiscordIDs(tx, guildID, append(
			append([]string{}, blueDiscordIDs...),
			redDiscordIDs...,
		))
		if err != nil {
			return err
		}

		blue, red := newTeam(roster[:TeamSize]), newTeam(roster[TeamSize:])

		actual := 0.0
		if winner == SideBlue {
			actual = 1.0
		}

		// blueDelta is positive when blue won, red always gets the exact
		// negation so the ten deltas sum to zero.
		blueDelta, err := ratingDelta(blue.AverageRating(), red.AverageRating(), actual)
		if err != nil {
			return err
		}

		match := newMatch(guildID, blue, red)
		match.Winner = winner
		match.BlueAvgRating = int(math.Round(blue.AverageRating()))
		match.RedAvgRating = int(math.Round(red.AverageRating()))
		match.RatingChange = abs(blueDelta)

		deltas := make(map[string]int, RosterSize)
		for k := range blue.Players {
			if err := applyRatingDelta(tx, blue.Players[k], guildID, blueDelta); err != nil {
				return err
			}
			deltas[blue.Players[k].DiscordID] = blueDelta
		}
		for k := range red.Players {
			if err := applyRatingDelta(tx, red.Players[k], guildID, -blueDelta); err != nil {
				return err
			}
			deltas[red.Players[k].DiscordID] = -blueDelta
		}

		if err := match.insert(tx); err != nil {
			return err
		}

		log.Printf(
			"info: recorded match %s in guild %s, %s won, ±%d",
			match.ID, guildID, winner, match.RatingChange,
		)

		ret = MMRChanges{
			MatchID: match.ID,
			Winner:  winner,
			Change:  match.RatingChange,
			Deltas:  deltas,
		}
		return nil
	}); err != nil {
		return MMRChanges{}, err
	}

	return ret, nil
}

// CorrectMatch flips the recorded winner of a match to the given team. The
// net adjustment is twice the originally applied delta, signed against the
// previously declared winner: one application both undoes the wrong result
// and applies the right one. It is applied on top of the current live
// ratings, so drift from matches played since is preserved rather than
// replayed. The winner, the snapshot-derived averages and the delta on the
// match row are recomputed from the pre-match snapshot; the snapshot itself
// is never touched, which keeps further corrections exact. Declaring the
// already-recorded winner fails with ErrNoOpCorrection; a later genuine
// re-flip is accepted.
func (b *Back) CorrectMatch(
	guildID string,
	matchID util.UUIDAsBlob,
	winner Side,
) (MMRChanges, error) {
	if !winner.IsValid() {
		return MMRChanges{}, ErrInvalidInput{
			Field: "winner",
			Value: int(winner),
			Hint:  "winner must be the blue or red team",
		}
	}

	var ret MMRChanges
	if err := b.transaction(func(tx *sqlx.Tx) error {
		match, err := getMatch(tx, guildID, matchID)
		if err != nil {
			return err
		}

		if match.Snapshot == nil {
			return ErrNoSnapshot
		}
		if match.Winner == winner {
			return ErrNoOpCorrection
		}

		// The new winner gains what it wrongly lost plus what it should have
		// won; the other side mirrors it.
		net := 2 * match.RatingChange
		sideNet := map[Side]int{winner: net, winner.Other(): -net}

		deltas := make(map[string]int, RosterSize)
		sides := []struct {
			side Side
			ids  util.UUIDArrayAsJSON
		}{
			{SideBlue, match.BluePlayerIDs},
			{SideRed, match.RedPlayerIDs},
		}
		for _, v := range sides {
			for _, id := range v.ids.Slice() {
				player, err := getPlayerByID(tx, util.UUIDAsBlob(id))
				if err != nil {
					return fmt.Errorf("unable to load match participant %s: %w", id, err)
				}

				if err := applyRatingDelta(tx, player, guildID, sideNet[v.side]); err != nil {
					return err
				}
				deltas[player.DiscordID] = sideNet[v.side]
			}
		}

		blueAvg, redAvg, err := snapshotAverages(match)
		if err != nil {
			return err
		}

		actual := 0.0
		if winner == SideBlue {
			actual = 1.0
		}
		blueDelta, err := ratingDelta(blueAvg, redAvg, actual)
		if err != nil {
			return err
		}

		match.Winner = winner
		match.BlueAvgRating = int(math.Round(blueAvg))
		match.RedAvgRating = int(math.Round(redAvg))
		match.RatingChange = abs(blueDelta)
		match.CorrectedAt = util.NewNullTimeAsTimestamp(time.Now())
		if err := match.updateCorrection(tx); err != nil {
			return err
		}

		log.Printf(
			"info: corrected match %s in guild %s, %s won, net ±%d",
			match.ID, guildID, winner, net,
		)

		ret = MMRChanges{
			MatchID: match.ID,
			Winner:  winner,
			Change:  net,
			Deltas:  deltas,
		}
		return nil
	}); err != nil {
		return MMRChanges{}, err
	}

	return ret, nil
}

// snapshotAverages rebuilds the per-side average ratings from the immutable
// pre-match snapshot.
func snapshotAverages(match Match) (blueAvg, redAvg float64, _ error) {
	for _, v := range []struct {
		ids util.UUIDArrayAsJSON
		avg *float64
	}{
		{match.BluePlayerIDs, &blueAvg},
		{match.RedPlayerIDs, &redAvg},
	} {
		total := 0
		for _, id := range v.ids.Slice() {
			rating, ok := match.Snapshot.Get(util.UUIDAsBlob(id))
			if !ok {
				return 0, 0, ErrNoSnapshot
			}
			total += rating
		}
		*v.avg = float64(total) / float64(len(v.ids))
	}

	return blueAvg, redAvg, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
