package back // nolint:testpackage

import (
	"testing"

	"gopkg.in/guregu/null.v4"
)

func TestRegisterDiscordPlayerKeepsAccountFields(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RegisterDiscordPlayer(
		testGuildID, "discord-faker", "Faker",
		"Hide on bush", "KR1",
		null.StringFrom("CHALLENGER"), null.StringFrom("I"),
	); err != nil {
		t.Fatal(err)
	}

	player, err := back.GetPlayer(testGuildID, "discord-faker")
	if err != nil {
		t.Fatal(err)
	}

	if !player.GameName.Valid || player.GameName.String != "Hide on bush" {
		t.Errorf("expected game name 'Hide on bush', got %#v", player.GameName)
	}
	if !player.TagLine.Valid || player.TagLine.String != "KR1" {
		t.Errorf("expected tag line 'KR1', got %#v", player.TagLine)
	}
	if !player.Tier.Valid || player.Tier.String != "CHALLENGER" {
		t.Errorf("expected tier CHALLENGER, got %#v", player.Tier)
	}
}

func TestRegisterDiscordPlayerWithoutAccountLeavesNulls(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RegisterDiscordPlayer(
		testGuildID, "discord-anon", "Anon",
		"", "",
		null.String{}, null.String{},
	); err != nil {
		t.Fatal(err)
	}

	player, err := back.GetPlayer(testGuildID, "discord-anon")
	if err != nil {
		t.Fatal(err)
	}

	if player.GameName.Valid || player.TagLine.Valid {
		t.Errorf(
			"expected null game name and tag line, got %#v / %#v",
			player.GameName, player.TagLine,
		)
	}
	if player.Rating != DefaultRating {
		t.Errorf("expected rating %d, got %d", DefaultRating, player.Rating)
	}
}

func TestRegisterDiscordPlayerUpdatesExisting(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RegisterDiscordPlayer(
		testGuildID, "discord-smurf", "Smurf",
		"", "",
		null.String{}, null.String{},
	); err != nil {
		t.Fatal(err)
	}

	if _, err := back.RegisterDiscordPlayer(
		testGuildID, "discord-smurf", "Smurf",
		"NotASmurf", "EUW",
		null.StringFrom("IRON"), null.StringFrom("IV"),
	); err != nil {
		t.Fatal(err)
	}

	player, err := back.GetPlayer(testGuildID, "discord-smurf")
	if err != nil {
		t.Fatal(err)
	}

	if player.GameName.String != "NotASmurf" || player.TagLine.String != "EUW" {
		t.Errorf(
			"expected updated account fields, got %#v / %#v",
			player.GameName, player.TagLine,
		)
	}
}
