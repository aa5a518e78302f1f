package back

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"poro/internal/util"

	"github.com/Masterminds/squirrel"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/jmoiron/sqlx"
)

// GuildSettings is the per-guild configuration document. It is stored as
// JSON and mutated through RFC 7386 merge patches so new knobs never need a
// migration.
type GuildSettings struct {
	AdminRoleID       string `json:"adminRoleID,omitempty"`
	AnnounceChannelID string `json:"announceChannelID,omitempty"`
	LeaderboardSize   int    `json:"leaderboardSize,omitempty"`
}

type guildSettingsRow struct {
	GuildID   string
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp
	Settings  []byte
}

func getGuildSettingsRow(tx *sqlx.Tx, guildID string) (guildSettingsRow, error) {
	var ret guildSettingsRow
	query := `SELECT * FROM GuildSettings WHERE GuildSettings.GuildID = ? LIMIT 1`
	err := tx.Get(&ret, query, guildID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			now := util.TimeAsTimestamp(time.Now())
			return guildSettingsRow{
				GuildID:   guildID,
				CreatedAt: now,
				UpdatedAt: now,
				Settings:  []byte("{}"),
			}, nil
		}
		return guildSettingsRow{}, err
	}

	return ret, nil
}

func (r *guildSettingsRow) upsert(tx *sqlx.Tx) error {
	r.UpdatedAt = util.TimeAsTimestamp(time.Now())

	query, args, err := squirrel.Insert("GuildSettings").SetMap(squirrel.Eq{
		"GuildID":   r.GuildID,
		"CreatedAt": r.CreatedAt,
		"UpdatedAt": r.UpdatedAt,
		"Settings":  r.Settings,
	}).Suffix(`ON CONFLICT(GuildID) DO UPDATE SET
        Settings = excluded.Settings,
        UpdatedAt = excluded.UpdatedAt`).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// GetGuildSettings returns the stored settings, zero values for guilds that
// never configured anything.
func (b *Back) GetGuildSettings(guildID string) (settings GuildSettings, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		row, err := getGuildSettingsRow(tx, guildID)
		if err != nil {
			return err
		}

		return json.Unmarshal(row.Settings, &settings)
	}); err != nil {
		return GuildSettings{}, err
	}

	return settings, nil
}

// PatchGuildSettings applies an RFC 7386 merge patch to the guild settings
// document and returns the merged result.
func (b *Back) PatchGuildSettings(guildID string, patch []byte) (settings GuildSettings, _ error) {
	if !json.Valid(patch) {
		return GuildSettings{}, ErrInvalidInput{
			Field: "patch",
			Value: string(patch),
			Hint:  "settings patch must be a JSON document",
		}
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		row, err := getGuildSettingsRow(tx, guildID)
		if err != nil {
			return err
		}

		merged, err := jsonpatch.MergePatch(row.Settings, patch)
		if err != nil {
			return fmt.Errorf("unable to apply settings patch: %w", err)
		}

		// Reject documents that don't map back to known settings.
		if err := strictUnmarshal(merged, &settings); err != nil {
			return ErrInvalidInput{
				Field: "patch",
				Value: string(patch),
				Hint:  err.Error(),
			}
		}

		row.Settings = merged
		return row.upsert(tx)
	}); err != nil {
		return GuildSettings{}, err
	}

	return settings, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
