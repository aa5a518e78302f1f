package bot

import (
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdConfig(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isAdmin(m) {
		return errPublic("only admins can change the guild settings")
	}

	if len(args) == 0 {
		settings, err := bot.back.GetGuildSettings(m.GuildID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Current settings:\n```\n%+v\n```\n", settings)
		fmt.Fprint(w, "Change them with a merge patch, eg. `!config {\"leaderboardSize\": 25}`.")
		return nil
	}

	patch := strings.Join(args, " ")
	settings, err := bot.back.PatchGuildSettings(m.GuildID, []byte(patch))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Settings updated:\n```\n%+v\n```", settings)
	return nil
}
