package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"poro/pkg/riotapi"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/guregu/null.v4"
)

func (bot *Bot) cmdRegister(m *discordgo.Message, args []string, w io.Writer) error {
	name := m.Author.Username

	var (
		tier, division    null.String
		gameName, tagLine string
	)

	if len(args) > 0 {
		if bot.riot == nil {
			return errPublic("Riot account lookups are not configured on this instance")
		}

		parts := strings.SplitN(strings.Join(args, " "), "#", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return errPublic("expected a Riot ID looking like `GameName#TAG`")
		}

		ctx := context.Background()
		account, err := bot.riot.GetAccountByRiotID(ctx, parts[0], parts[1])
		if errors.Is(err, riotapi.ErrNotFound) {
			return errPublic(fmt.Sprintf("no Riot account matches `%s#%s`", parts[0], parts[1]))
		}
		if err != nil {
			return err
		}

		entry, err := bot.riot.GetSoloQueueEntry(ctx, account.PUUID)
		switch {
		case err == nil:
			tier = null.StringFrom(entry.Tier)
			division = null.StringFrom(entry.Division)
		case errors.Is(err, riotapi.ErrNotRanked):
			// Unranked accounts seed mid-ladder.
		default:
			return err
		}

		name = account.GameName
		gameName, tagLine = account.GameName, account.TagLine
	}

	player, err := bot.back.RegisterDiscordPlayer(
		m.GuildID, m.Author.ID, name,
		gameName, tagLine, tier, division,
	)
	if err != nil {
		return err
	}

	if tier.Valid {
		fmt.Fprintf(
			w, "You have been registered as `%s` (%s %s), starting at %d MMR.",
			player.Name, tier.String, division.ValueOrZero(), player.Rating,
		)
	} else {
		fmt.Fprintf(w, "You have been registered as `%s`, starting at %d MMR.", player.Name, player.Rating)
	}

	return nil
}

// targetDiscordID is the mentioned player if any, the author otherwise.
func targetDiscordID(m *discordgo.Message, args []string) (string, error) {
	if len(args) == 0 {
		return m.Author.ID, nil
	}

	return parseMention(args[0])
}

func (bot *Bot) cmdMMR(m *discordgo.Message, args []string, w io.Writer) error {
	discordID, err := targetDiscordID(m, args)
	if err != nil {
		return err
	}

	player, err := bot.back.GetPlayer(m.GuildID, discordID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "`%s` sits at %d MMR", player.Name, player.Rating)
	if player.Tier.Valid {
		fmt.Fprintf(w, " (seeded from %s %s)", player.Tier.String, player.Division.ValueOrZero())
	}
	fmt.Fprint(w, ".")

	return nil
}

func (bot *Bot) cmdSetMMR(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isAdmin(m) {
		return errPublic("only admins can override ratings")
	}
	if len(args) != 2 {
		return errPublic("expected 2 arguments: @user RATING")
	}

	discordID, err := parseMention(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return errPublic(fmt.Sprintf("`%s` is not a rating", args[1]))
	}

	old, err := bot.back.SetPlayerRating(m.GuildID, discordID, rating)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Rating of <@%s> moved from %d to %d.", discordID, old, rating)
	return nil
}

func (bot *Bot) cmdHistory(m *discordgo.Message, args []string, w io.Writer) error {
	discordID, err := targetDiscordID(m, args)
	if err != nil {
		return err
	}

	history, err := bot.back.GetMatchHistory(m.GuildID, discordID, 10)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprint(w, "No matches on record.")
		return nil
	}

	fmt.Fprintf(w, "Last %d matches of <@%s>:\n```\n", len(history), discordID)
	for _, v := range history {
		outcome := "L"
		if v.Won {
			outcome = "W"
		}
		corrected := ""
		if v.Corrected {
			corrected = " (corrected)"
		}

		fmt.Fprintf(
			w, "%s  %s %+4d  %s%s\n",
			v.PlayedAt.Time().Format("2006-01-02 15:04"),
			outcome, v.Delta, v.MatchID, corrected,
		)
	}
	fmt.Fprint(w, "```")

	return nil
}
