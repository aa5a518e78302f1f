package bot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"poro/internal/back"
	"poro/internal/config"
	"poro/internal/util"
	"poro/pkg/riotapi"

	"github.com/bwmarrin/discordgo"
)

type commandHandler func(m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config
	riot   *riotapi.API

	startedAt time.Time
	token     string
	dg        *discordgo.Session

	handlers map[string]commandHandler

	// rosterMu guards the last roster generated per guild, which is what
	// `!result` reports on.
	rosterMu    sync.Mutex
	lastRosters map[string]roster
}

type roster struct {
	blue, red []string // Discord IDs
}

func New(back *back.Back, conf *config.Config, riot *riotapi.API) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		back:        back,
		config:      conf,
		riot:        riot,
		token:       conf.DiscordToken,
		dg:          dg,
		startedAt:   time.Now(),
		lastRosters: map[string]roster{},
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!dev":      bot.cmdDev,
		"!help":     bot.cmdHelp,
		"!register": bot.cmdRegister,

		"!teams":   bot.cmdTeams,
		"!result":  bot.cmdResult,
		"!correct": bot.cmdCorrect,

		"!mmr":         bot.cmdMMR,
		"!setmmr":      bot.cmdSetMMR,
		"!history":     bot.cmdHistory,
		"!leaderboard": bot.cmdLeaderboard,
		"!accuracy":    bot.cmdAccuracy,

		"!config": bot.cmdConfig,
	}

	return bot, nil
}

func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	wg.Add(1)
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	<-done

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}
	if !bot.shouldListenTo(m) {
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	out := newChannelWriter(s, m.ChannelID)
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, please tell an admin.")
			log.Print("panic: ", r)
			log.Print(debug.Stack())
		}
	}()

	if err := bot.dispatch(m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if isPublic(err) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprint(out, "An admin will check the logs when they have time.")
		}

		log.Printf("error: failed to process command: %s", err)
	}
}

func (bot *Bot) shouldListenTo(m *discordgo.MessageCreate) bool {
	for _, v := range bot.config.DiscordBannedUserIDs {
		if v == m.Author.ID {
			return false
		}
	}

	// An empty whitelist means every channel is fair game.
	if len(bot.config.DiscordListenIDs) == 0 || m.GuildID == "" {
		return true
	}
	for _, v := range bot.config.DiscordListenIDs {
		if v == m.ChannelID {
			return true
		}
	}

	return false
}

// isAdmin accepts both the globally configured admin users and members
// holding the per-guild admin role.
func (bot *Bot) isAdmin(m *discordgo.Message) bool {
	for _, v := range bot.config.DiscordAdminUserIDs {
		if v == m.Author.ID {
			return true
		}
	}

	if m.GuildID == "" || m.Member == nil {
		return false
	}

	settings, err := bot.back.GetGuildSettings(m.GuildID)
	if err != nil {
		log.Printf("error: unable to load guild settings: %s", err)
		return false
	}
	if settings.AdminRoleID == "" {
		return false
	}

	for _, v := range m.Member.Roles {
		if v == settings.AdminRoleID {
			return true
		}
	}

	return false
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Fields(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	handler, ok := bot.handlers[command]
	if !ok {
		return errPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}
	if m.GuildID == "" && command != "!help" {
		return errPublic("ladder commands only work inside a server")
	}

	return handler(m, args, w)
}

// isPublic tells apart errors that are safe and useful to echo back to the
// channel from internal ones that only belong in the logs.
func isPublic(err error) bool {
	return errors.Is(err, errPublic("")) ||
		errors.Is(err, util.ErrPublic("")) ||
		errors.Is(err, back.ErrInvalidInput{}) ||
		errors.Is(err, back.ErrIncompleteRoster{}) ||
		errors.Is(err, back.ErrMatchNotFound) ||
		errors.Is(err, back.ErrNoSnapshot) ||
		errors.Is(err, back.ErrNoOpCorrection)
}

func (bot *Bot) cmdHelp(m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Players
!register NAME#TAG   # link your Riot account, your rank seeds your rating
!register            # register without a Riot account (seeded mid-ladder)
!mmr [@user]         # display a player's rating
!history [@user]     # display a player's last matches
!leaderboard         # display the guild standings
!help                # display this help message

# Matches
!teams @p1 ... @p10  # split ten players into two even teams
!result blue|red     # record the winner of the last generated match
!accuracy            # how well ratings predict match outcomes
'''`, "'''", "```"))

	if !bot.isAdmin(m) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`Admin-only commands:
'''
!correct MATCH_ID blue|red   # fix a misreported match result
!setmmr @user RATING         # override a player's rating
!config {JSON}               # merge-patch the guild settings
!dev uptime|url|error|panic
'''`, "'''", "```"))

	return nil
}
