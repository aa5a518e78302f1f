package back

import (
	"database/sql"
	"errors"
	"time"

	"poro/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Side int

const ( // this is stored in DB, don't change values
	SideBlue Side = 1
	SideRed  Side = 2
)

func (s Side) IsValid() bool {
	return s == SideBlue || s == SideRed
}

func (s Side) Other() Side {
	if s == SideBlue {
		return SideRed
	}

	return SideBlue
}

func (s Side) String() string {
	switch s {
	case SideBlue:
		return "blue"
	case SideRed:
		return "red"
	default:
		return "unknown"
	}
}

// A Match is one recorded 5v5 outcome. Rows are append-only: a correction
// may overwrite the winner, the snapshot-derived averages, and the applied
// delta, but the participant sets and the pre-match rating snapshot never
// change after insertion.
type Match struct {
	ID          util.UUIDAsBlob
	GuildID     string
	CreatedAt   util.TimeAsTimestamp
	CorrectedAt util.NullTimeAsTimestamp

	BluePlayerIDs util.UUIDArrayAsJSON
	RedPlayerIDs  util.UUIDArrayAsJSON

	// Average guild rating per side at record time, derived from Snapshot.
	BlueAvgRating int
	RedAvgRating  int

	Winner Side

	// RatingChange is the absolute delta every participant moved by.
	RatingChange int

	// Snapshot maps every participant to their rating immediately before
	// this match. nil on rows that predate snapshotting.
	Snapshot util.RatingsAsJSON
}

func newMatch(guildID string, blue, red Team) Match {
	snapshot := make(util.RatingsAsJSON, RosterSize)
	for _, t := range []Team{blue, red} {
		for k := range t.Players {
			snapshot[t.Players[k].ID.UUID()] = t.Players[k].Rating
		}
	}

	return Match{
		ID:            util.NewUUIDAsBlob(),
		GuildID:       guildID,
		CreatedAt:     util.TimeAsTimestamp(time.Now()),
		BluePlayerIDs: newTeamPlayerIDs(blue),
		RedPlayerIDs:  newTeamPlayerIDs(red),
		Snapshot:      snapshot,
	}
}

func newTeamPlayerIDs(t Team) util.UUIDArrayAsJSON {
	ids := make([]util.UUIDAsBlob, 0, len(t.Players))
	for k := range t.Players {
		ids = append(ids, t.Players[k].ID)
	}

	return util.NewUUIDArrayAsJSON(ids...)
}

func (m *Match) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":            m.ID,
		"GuildID":       m.GuildID,
		"CreatedAt":     m.CreatedAt,
		"CorrectedAt":   m.CorrectedAt,
		"BluePlayerIDs": m.BluePlayerIDs,
		"RedPlayerIDs":  m.RedPlayerIDs,
		"BlueAvgRating": m.BlueAvgRating,
		"RedAvgRating":  m.RedAvgRating,
		"Winner":        m.Winner,
		"RatingChange":  m.RatingChange,
		"Snapshot":      m.Snapshot,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// updateCorrection overwrites the mutable subset of the match row. The
// participant sets and snapshot are deliberately absent.
func (m *Match) updateCorrection(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Match").SetMap(squirrel.Eq{
		"Winner":        m.Winner,
		"BlueAvgRating": m.BlueAvgRating,
		"RedAvgRating":  m.RedAvgRating,
		"RatingChange":  m.RatingChange,
		"CorrectedAt":   m.CorrectedAt,
	}).Where(squirrel.Eq{
		"Match.ID":      m.ID,
		"Match.GuildID": m.GuildID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getMatch(tx *sqlx.Tx, guildID string, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? AND Match.GuildID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id, guildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrMatchNotFound
		}
		return Match{}, err
	}

	return ret, nil
}

// getMatchesByGuild returns the guild's full match history in chronological
// order. CreatedAt has second resolution so rowid breaks insertion ties.
func getMatchesByGuild(tx *sqlx.Tx, guildID string) ([]Match, error) {
	var ret []Match
	query := `SELECT * FROM Match WHERE Match.GuildID = ? ORDER BY Match.CreatedAt ASC, Match.rowid ASC`
	if err := tx.Select(&ret, query, guildID); err != nil {
		return nil, err
	}

	return ret, nil
}

func getMatchesByPlayer(tx *sqlx.Tx, guildID string, playerID util.UUIDAsBlob, limit int) ([]Match, error) {
	var ret []Match
	query := `
        SELECT * FROM Match
        WHERE Match.GuildID = ? AND
            (BluePlayerIDs LIKE ? OR RedPlayerIDs LIKE ?)
        ORDER BY Match.CreatedAt DESC, Match.rowid DESC
        LIMIT ?`

	needle := `%"` + playerID.String() + `"%`
	if err := tx.Select(&ret, query, guildID, needle, needle, limit); err != nil {
		return nil, err
	}

	return ret, nil
}
