package bot

import (
	"fmt"
	"io"
	"strings"

	"poro/internal/back"
	"poro/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// parseMention extracts the user ID from a `<@123>` or `<@!123>` token.
func parseMention(arg string) (string, error) {
	if !strings.HasPrefix(arg, "<@") || !strings.HasSuffix(arg, ">") {
		return "", errPublic(fmt.Sprintf("`%s` is not a user mention", arg))
	}

	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return "", errPublic(fmt.Sprintf("`%s` is not a user mention", arg))
	}

	return id, nil
}

func parseSide(arg string) (back.Side, error) {
	switch strings.ToLower(arg) {
	case "blue":
		return back.SideBlue, nil
	case "red":
		return back.SideRed, nil
	default:
		return 0, errPublic(fmt.Sprintf("`%s` is not a team, use `blue` or `red`", arg))
	}
}

func (bot *Bot) cmdTeams(m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != back.RosterSize {
		return errPublic(fmt.Sprintf("expected %d mentioned players, got %d", back.RosterSize, len(args)))
	}

	discordIDs := make([]string, 0, back.RosterSize)
	for _, arg := range args {
		id, err := parseMention(arg)
		if err != nil {
			return err
		}
		discordIDs = append(discordIDs, id)
	}

	blue, red, err := bot.back.GenerateTeams(m.GuildID, discordIDs)
	if err != nil {
		return err
	}

	bot.rosterMu.Lock()
	bot.lastRosters[m.GuildID] = roster{blue: blue.DiscordIDs(), red: red.DiscordIDs()}
	bot.rosterMu.Unlock()

	writeTeam := func(name string, team back.Team) {
		fmt.Fprintf(w, "**%s** (avg. %.0f):", name, team.AverageRating())
		for k := range team.Players {
			fmt.Fprintf(w, " <@%s>", team.Players[k].DiscordID)
		}
		fmt.Fprint(w, "\n")
	}

	writeTeam("Blue", blue)
	writeTeam("Red", red)
	fmt.Fprint(w, "When it's over, report the winner with `!result blue` or `!result red`.")

	return nil
}

func (bot *Bot) cmdResult(m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errPublic("expected 1 argument: `blue` or `red`")
	}
	winner, err := parseSide(args[0])
	if err != nil {
		return err
	}

	bot.rosterMu.Lock()
	last, ok := bot.lastRosters[m.GuildID]
	bot.rosterMu.Unlock()
	if !ok {
		return errPublic("no teams were generated in this server, use `!teams` first")
	}

	changes, err := bot.back.RecordMatch(m.GuildID, last.blue, last.red, winner)
	if err != nil {
		return err
	}

	bot.rosterMu.Lock()
	delete(bot.lastRosters, m.GuildID)
	bot.rosterMu.Unlock()

	fmt.Fprintf(
		w, "Recorded a **%s** win, winners gain %d MMR, losers lose as much.\n",
		changes.Winner, changes.Change,
	)
	fmt.Fprintf(w, "Match ID: `%s` (admins can `!correct` it if this is wrong)", changes.MatchID)

	return nil
}

func (bot *Bot) cmdCorrect(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isAdmin(m) {
		return errPublic("only admins can correct match results")
	}
	if len(args) != 2 {
		return errPublic("expected 2 arguments: MATCH_ID blue|red")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return errPublic(fmt.Sprintf("`%s` is not a match ID", args[0]))
	}
	winner, err := parseSide(args[1])
	if err != nil {
		return err
	}

	changes, err := bot.back.CorrectMatch(m.GuildID, util.UUIDAsBlob(id), winner)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w, "Match `%s` now stands as a **%s** win, the new winners each moved up %d MMR.",
		changes.MatchID, changes.Winner, changes.Change,
	)

	return nil
}
