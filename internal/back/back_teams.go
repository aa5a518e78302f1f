package back

import (
	"github.com/jmoiron/sqlx"
)

// GenerateTeams resolves ten Discord users to rated players and returns the
// balanced blue/red split for the given guild. Nothing is persisted: the
// match only enters the ledger when its result is reported.
func (b *Back) GenerateTeams(guildID string, discordIDs []string) (blue, red Team, _ error) {
	if len(discordIDs) != RosterSize {
		return Team{}, Team{}, ErrInvalidInput{
			Field: "players",
			Value: len(discordIDs),
			Hint:  "exactly 10 players are required",
		}
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		roster, err := getRosterByDiscordIDs(tx, guildID, discordIDs)
		if err != nil {
			return err
		}

		blue, red, err = balanceTeams(roster, b.intn)
		return err
	}); err != nil {
		return Team{}, Team{}, err
	}

	return blue, red, nil
}
