package main

import (
	"fmt"
	"log"

	"poro/internal/back"

	"gopkg.in/guregu/null.v4"
)

const fixturesGuildID = "guild-dev"

// loadFixtures registers ten players of spread-out ranks and records one
// match between them, enough to poke at every command by hand.
func loadFixtures() error {
	b, err := back.New("sqlite3", "./poro.db")
	if err != nil {
		return err
	}

	players := []struct {
		name, tier, division string
	}{
		{"Teemo", "IRON", "IV"},
		{"Garen", "BRONZE", "II"},
		{"Lux", "SILVER", "I"},
		{"Ahri", "GOLD", "III"},
		{"Yasuo", "GOLD", "I"},
		{"Jinx", "PLATINUM", "IV"},
		{"Thresh", "EMERALD", "II"},
		{"Azir", "DIAMOND", "I"},
		{"Faker", "CHALLENGER", ""},
		{"Poro", "", ""},
	}

	ids := make([]string, 0, len(players))
	for k, v := range players {
		discordID := fmt.Sprintf("%018d", k)
		player, err := b.RegisterDiscordPlayer(
			fixturesGuildID, discordID, v.name,
			v.name, "DEV", nullable(v.tier), nullable(v.division),
		)
		if err != nil {
			return err
		}
		log.Printf("info: registered %s at %d MMR", player.Name, player.Rating)

		ids = append(ids, discordID)
	}

	blue, red, err := b.GenerateTeams(fixturesGuildID, ids)
	if err != nil {
		return err
	}
	if _, err := b.RecordMatch(fixturesGuildID, blue.DiscordIDs(), red.DiscordIDs(), back.SideBlue); err != nil {
		return err
	}

	return nil
}

func nullable(v string) null.String {
	if v == "" {
		return null.String{}
	}

	return null.StringFrom(v)
}
