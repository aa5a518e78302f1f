package back

import (
	"database/sql"
	"errors"

	"poro/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// LeaderboardEntry is one row of a guild's ladder standings.
type LeaderboardEntry struct {
	DiscordID  string
	PlayerName string
	Tier       null.String
	Division   null.String
	Rating     int
	Wins       int
	Losses     int
}

// GetLeaderboard returns the guild ladder ordered by rating, limited to the
// given number of rows (0 means everyone).
func (b *Back) GetLeaderboard(guildID string, limit int) (out []LeaderboardEntry, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		query := `
            SELECT
                Player.ID AS PlayerID,
                Player.DiscordID AS DiscordID,
                Player.Name AS PlayerName,
                Player.Tier AS Tier,
                Player.Division AS Division,
                PlayerRating.Rating AS Rating
            FROM PlayerRating
            INNER JOIN Player ON (PlayerRating.PlayerID = Player.ID)
            WHERE PlayerRating.GuildID = ?
            ORDER BY PlayerRating.Rating DESC, Player.Name ASC`

		var rows []struct {
			PlayerID util.UUIDAsBlob
			LeaderboardEntry
		}
		if err := tx.Select(&rows, query, guildID); err != nil {
			return err
		}
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}

		matches, err := getMatchesByGuild(tx, guildID)
		if err != nil {
			return err
		}

		wins, losses := tallyOutcomes(matches)
		out = make([]LeaderboardEntry, 0, len(rows))
		for k := range rows {
			entry := rows[k].LeaderboardEntry
			entry.Wins = wins[rows[k].PlayerID.UUID()]
			entry.Losses = losses[rows[k].PlayerID.UUID()]
			out = append(out, entry)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return out, nil
}

func tallyOutcomes(matches []Match) (wins, losses map[uuid.UUID]int) {
	wins = make(map[uuid.UUID]int)
	losses = make(map[uuid.UUID]int)

	for k := range matches {
		winners, defeated := matches[k].BluePlayerIDs, matches[k].RedPlayerIDs
		if matches[k].Winner == SideRed {
			winners, defeated = defeated, winners
		}

		for _, id := range winners.Slice() {
			wins[id]++
		}
		for _, id := range defeated.Slice() {
			losses[id]++
		}
	}

	return wins, losses
}

// HistoryEntry is one match from a single player's point of view.
type HistoryEntry struct {
	MatchID       util.UUIDAsBlob
	PlayedAt      util.TimeAsTimestamp
	Won           bool
	Corrected     bool
	Delta         int      // signed, as currently recorded
	RatingAtMatch null.Int // from the snapshot, absent on pre-snapshot rows
}

// GetMatchHistory returns the player's most recent matches in the guild,
// newest first.
func (b *Back) GetMatchHistory(guildID, discordID string, limit int) (out []HistoryEntry, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic("this player has not connected an account yet")
			}
			return err
		}

		matches, err := getMatchesByPlayer(tx, guildID, player.ID, limit)
		if err != nil {
			return err
		}

		out = make([]HistoryEntry, 0, len(matches))
		for k := range matches {
			onBlue := matches[k].BluePlayerIDs.Has(player.ID.UUID())
			won := onBlue == (matches[k].Winner == SideBlue)

			delta := matches[k].RatingChange
			if !won {
				delta = -delta
			}

			entry := HistoryEntry{
				MatchID:   matches[k].ID,
				PlayedAt:  matches[k].CreatedAt,
				Won:       won,
				Corrected: matches[k].CorrectedAt.Valid,
				Delta:     delta,
			}
			if rating, ok := matches[k].Snapshot.Get(player.ID); ok {
				entry.RatingAtMatch = null.IntFrom(int64(rating))
			}

			out = append(out, entry)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return out, nil
}
