package back

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"poro/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a Discord user who connected a game account. The player row is
// global, ratings are per-guild (see PlayerRating): the same player climbs
// each guild's ladder independently.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	DiscordID string
	Name      string

	GameName null.String
	TagLine  null.String

	// Ranked tier/division as last seen on the game API, advisory only:
	// they seed the initial rating and show up on leaderboards.
	Tier     null.String
	Division null.String

	// Rating for the guild the player was loaded for.
	Rating int `db:"-"`
}

func NewPlayer(discordID, name string) Player {
	return Player{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		DiscordID: discordID,
		Name:      name,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":        p.ID,
		"CreatedAt": p.CreatedAt,
		"DiscordID": p.DiscordID,
		"Name":      p.Name,
		"GameName":  p.GameName,
		"TagLine":   p.TagLine,
		"Tier":      p.Tier,
		"Division":  p.Division,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":     p.Name,
		"GameName": p.GameName,
		"TagLine":  p.TagLine,
		"Tier":     p.Tier,
		"Division": p.Division,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getPlayerByDiscordID(tx *sqlx.Tx, discordID string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.DiscordID = ? LIMIT 1`
	if err := tx.Get(&ret, query, discordID); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

// getRosterByDiscordIDs loads players in input order with their rating for
// the given guild attached. Players without a rating row get the seed rating
// derived from their tier (or the default), persisted on the spot so the
// snapshot recorded later matches what was used.
func getRosterByDiscordIDs(tx *sqlx.Tx, guildID string, discordIDs []string) ([]Player, error) {
	if len(discordIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(discordIDs))
	for _, id := range discordIDs {
		if _, ok := seen[id]; ok {
			return nil, ErrInvalidInput{
				Field: "players",
				Value: id,
				Hint:  "duplicate player",
			}
		}
		seen[id] = struct{}{}
	}

	query, args, err := sqlx.In(`SELECT * FROM Player WHERE DiscordID IN(?)`, discordIDs)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	players := make([]Player, 0, len(discordIDs))
	if err := tx.Select(&players, query, args...); err != nil {
		return nil, err
	}

	byDiscordID := make(map[string]Player, len(players))
	for k := range players {
		byDiscordID[players[k].DiscordID] = players[k]
	}

	var missing []string
	roster := make([]Player, 0, len(discordIDs))
	for _, id := range discordIDs {
		player, ok := byDiscordID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}

		rating, err := getOrCreatePlayerRating(tx, player, guildID)
		if err != nil {
			return nil, err
		}
		player.Rating = rating.Rating

		roster = append(roster, player)
	}

	if len(missing) > 0 {
		return nil, ErrIncompleteRoster{Missing: missing}
	}

	return roster, nil
}

// RegisterDiscordPlayer connects a Discord user to a game account and seeds
// the rating for the guild the registration happened in.
func (b *Back) RegisterDiscordPlayer(
	guildID, discordID, name, gameName, tagLine string,
	tier, division null.String,
) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		existing, err := getPlayerByDiscordID(tx, discordID)
		switch {
		case err == nil:
			existing.Name = name
			existing.GameName = util.NullString(gameName)
			existing.TagLine = util.NullString(tagLine)
			existing.Tier = tier
			existing.Division = division
			if err := existing.update(tx); err != nil {
				return err
			}
			player = existing
		case errors.Is(err, sql.ErrNoRows):
			player = NewPlayer(discordID, name)
			player.GameName = util.NullString(gameName)
			player.TagLine = util.NullString(tagLine)
			player.Tier = tier
			player.Division = division
			if err := player.insert(tx); err != nil {
				return err
			}
		default:
			return err
		}

		rating, err := getOrCreatePlayerRating(tx, player, guildID)
		if err != nil {
			return err
		}
		player.Rating = rating.Rating

		return nil
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// GetPlayer returns a player with its rating for the given guild.
func (b *Back) GetPlayer(guildID, discordID string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByDiscordID(tx, discordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic("this player has not connected an account yet")
			}
			return err
		}

		rating, err := getOrCreatePlayerRating(tx, player, guildID)
		if err != nil {
			return err
		}
		player.Rating = rating.Rating

		return nil
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// SetPlayerRating overrides a player's rating for one guild and returns the
// value it replaced. Exposed to guild admins for manual fixups.
func (b *Back) SetPlayerRating(guildID, discordID string, rating int) (old int, _ error) {
	err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByDiscordID(tx, discordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic("this player has not connected an account yet")
			}
			return err
		}

		cur, err := getOrCreatePlayerRating(tx, player, guildID)
		if err != nil {
			return err
		}

		old = cur.Rating
		cur.Rating = rating
		if err := cur.upsert(tx); err != nil {
			return err
		}

		log.Printf(
			"info: rating of player %s in guild %s overridden, %d -> %d",
			player.ID, guildID, old, rating,
		)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return old, nil
}
