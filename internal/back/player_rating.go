package back

import (
	"database/sql"
	"errors"
	"time"

	"poro/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DefaultRating is the rating of a player with no ranked tier on record.
const DefaultRating = 1000

// PlayerRating is one player's rating in one guild.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	GuildID   string
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp
	Rating    int
}

func newPlayerRating(player Player, guildID string) PlayerRating {
	now := util.TimeAsTimestamp(time.Now())
	return PlayerRating{
		PlayerID:  player.ID,
		GuildID:   guildID,
		CreatedAt: now,
		UpdatedAt: now,
		Rating:    seedRating(player.Tier, player.Division),
	}
}

// getOrCreatePlayerRating returns the stored rating row for a player in a
// guild, creating and persisting the seeded one the first time the player
// shows up in that guild.
func getOrCreatePlayerRating(tx *sqlx.Tx, player Player, guildID string) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? AND GuildID = ? LIMIT 1`
	err := tx.Get(&ret, query, player.ID, guildID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ret = newPlayerRating(player, guildID)
			if err := ret.upsert(tx); err != nil {
				return PlayerRating{}, err
			}
			return ret, nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	r.UpdatedAt = util.TimeAsTimestamp(time.Now())

	query, args, err := squirrel.Insert("PlayerRating").SetMap(squirrel.Eq{
		"PlayerID":  r.PlayerID,
		"GuildID":   r.GuildID,
		"CreatedAt": r.CreatedAt,
		"UpdatedAt": r.UpdatedAt,
		"Rating":    r.Rating,
	}).Suffix(`ON CONFLICT(PlayerID, GuildID) DO UPDATE SET
        Rating = excluded.Rating,
        UpdatedAt = excluded.UpdatedAt`).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// applyRatingDelta shifts one player's guild rating by delta.
func applyRatingDelta(tx *sqlx.Tx, player Player, guildID string, delta int) error {
	rating, err := getOrCreatePlayerRating(tx, player, guildID)
	if err != nil {
		return err
	}

	rating.Rating += delta
	return rating.upsert(tx)
}
