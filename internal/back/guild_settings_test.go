package back // nolint:testpackage

import (
	"errors"
	"testing"
)

func TestGuildSettingsDefaults(t *testing.T) {
	back := createFixturedTestBack(t)

	settings, err := back.GetGuildSettings("guild-unconfigured")
	if err != nil {
		t.Fatal(err)
	}
	if settings != (GuildSettings{}) {
		t.Errorf("expected zero settings for an unconfigured guild, got %+v", settings)
	}
}

func TestPatchGuildSettings(t *testing.T) {
	back := createFixturedTestBack(t)

	settings, err := back.PatchGuildSettings(testGuildID, []byte(`{"adminRoleID": "role-1", "leaderboardSize": 25}`))
	if err != nil {
		t.Fatal(err)
	}
	if settings.AdminRoleID != "role-1" || settings.LeaderboardSize != 25 {
		t.Errorf("unexpected merged settings: %+v", settings)
	}

	// A later patch only touches the keys it names, null removes one.
	settings, err = back.PatchGuildSettings(testGuildID, []byte(`{"announceChannelID": "chan-1", "leaderboardSize": null}`))
	if err != nil {
		t.Fatal(err)
	}
	if settings.AdminRoleID != "role-1" {
		t.Errorf("patch erased an untouched key: %+v", settings)
	}
	if settings.AnnounceChannelID != "chan-1" || settings.LeaderboardSize != 0 {
		t.Errorf("unexpected merged settings: %+v", settings)
	}

	stored, err := back.GetGuildSettings(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if stored != settings {
		t.Errorf("stored settings %+v differ from the patch result %+v", stored, settings)
	}
}

func TestPatchGuildSettingsRejectsGarbage(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.PatchGuildSettings(testGuildID, []byte(`{not json`)); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for invalid JSON, got %v", err)
	}
	if _, err := back.PatchGuildSettings(testGuildID, []byte(`{"noSuchKnob": true}`)); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for an unknown key, got %v", err)
	}

	// A failed patch must not dirty the stored document.
	settings, err := back.GetGuildSettings(testGuildID)
	if err != nil {
		t.Fatal(err)
	}
	if settings != (GuildSettings{}) {
		t.Errorf("rejected patch leaked into storage: %+v", settings)
	}
}
