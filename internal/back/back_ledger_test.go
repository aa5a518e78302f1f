package back // nolint:testpackage

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"poro/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/guregu/null.v4"
)

const testGuildID = "guild-test"

func createFixturedTestBack(t *testing.T) *Back {
	f, err := os.CreateTemp("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}

	return back
}

// registerTestRoster registers ten unranked players in the test guild, all
// seeded at DefaultRating, and returns their Discord IDs split per side.
func registerTestRoster(t *testing.T, back *Back) (blue, red []string) {
	ids := make([]string, 0, RosterSize)
	for i := 0; i < RosterSize; i++ {
		discordID := fmt.Sprintf("discord-%d", i)
		_, err := back.RegisterDiscordPlayer(
			testGuildID, discordID, fmt.Sprintf("Player %d", i),
			"", "", null.String{}, null.String{},
		)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, discordID)
	}

	return ids[:TeamSize], ids[TeamSize:]
}

func playerRating(t *testing.T, back *Back, discordID string) int {
	player, err := back.GetPlayer(testGuildID, discordID)
	if err != nil {
		t.Fatal(err)
	}

	return player.Rating
}

func TestRecordMatchEvenTeams(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	changes, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	if err != nil {
		t.Fatal(err)
	}

	// Two 1000-rated fives, K=32: the winners gain exactly half the K.
	if changes.Change != 16 {
		t.Errorf("expected a ±16 swing between even teams, got %d", changes.Change)
	}
	for _, id := range blue {
		if changes.Deltas[id] != 16 {
			t.Errorf("expected +16 for %s, got %d", id, changes.Deltas[id])
		}
		if got := playerRating(t, back, id); got != 1016 {
			t.Errorf("expected %s at 1016, got %d", id, got)
		}
	}
	for _, id := range red {
		if changes.Deltas[id] != -16 {
			t.Errorf("expected -16 for %s, got %d", id, changes.Deltas[id])
		}
		if got := playerRating(t, back, id); got != 984 {
			t.Errorf("expected %s at 984, got %d", id, got)
		}
	}

	history, err := back.GetMatchHistory(testGuildID, blue[0], 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	entry := history[0]
	if !entry.Won || entry.Corrected || entry.Delta != 16 {
		t.Errorf("unexpected history entry: %+v", entry)
	}
	if !entry.RatingAtMatch.Valid || entry.RatingAtMatch.Int64 != 1000 {
		t.Errorf("expected a pre-match rating of 1000 in the snapshot, got %+v", entry.RatingAtMatch)
	}
}

func TestRecordMatchIsZeroSum(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	for _, id := range blue {
		if _, err := back.SetPlayerRating(testGuildID, id, 1100); err != nil {
			t.Fatal(err)
		}
	}

	changes, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	if err != nil {
		t.Fatal(err)
	}

	// 1100 vs 1000, favorites win: round(32 × (1 − 0.6401)) = 12.
	if changes.Change != 12 {
		t.Errorf("expected a ±12 swing, got %d", changes.Change)
	}

	sum := 0
	for _, delta := range changes.Deltas {
		sum += delta
	}
	if sum != 0 {
		t.Errorf("deltas sum to %d, the ledger must be zero-sum", sum)
	}
}

func TestRecordMatchValidation(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	if _, err := back.RecordMatch(testGuildID, blue, red, Side(0)); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for an invalid winner, got %v", err)
	}
	if _, err := back.RecordMatch(testGuildID, blue[:4], red, SideBlue); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for a 4v5, got %v", err)
	}

	duplicated := append(append([]string{}, blue[:4]...), red[0])
	if _, err := back.RecordMatch(testGuildID, duplicated, red, SideBlue); !errors.Is(err, ErrInvalidInput{}) {
		t.Errorf("expected ErrInvalidInput for a duplicated player, got %v", err)
	}

	blue[0] = "discord-nobody"
	_, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	var incomplete ErrIncompleteRoster
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected ErrIncompleteRoster, got %v", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "discord-nobody" {
		t.Errorf("unexpected missing players: %v", incomplete.Missing)
	}
}

func TestCorrectMatchFlipsTheOutcome(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	recorded, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	if err != nil {
		t.Fatal(err)
	}

	corrected, err := back.CorrectMatch(testGuildID, recorded.MatchID, SideRed)
	if err != nil {
		t.Fatal(err)
	}

	// Twice the original ±16: undo the wrong result, apply the right one.
	if corrected.Change != 32 {
		t.Errorf("expected a net ±32 correction, got %d", corrected.Change)
	}
	for _, id := range red {
		if corrected.Deltas[id] != 32 {
			t.Errorf("expected +32 for %s, got %d", id, corrected.Deltas[id])
		}
		if got := playerRating(t, back, id); got != 1016 {
			t.Errorf("expected %s at 1016 after correction, got %d", id, got)
		}
	}
	for _, id := range blue {
		if got := playerRating(t, back, id); got != 984 {
			t.Errorf("expected %s at 984 after correction, got %d", id, got)
		}
	}

	history, err := back.GetMatchHistory(testGuildID, blue[0], 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || !history[0].Corrected {
		t.Fatalf("expected a single corrected history entry, got %+v", history)
	}
	if history[0].Won || history[0].Delta != -16 {
		t.Errorf("expected a -16 loss after correction, got %+v", history[0])
	}

	// Declaring the already-recorded winner again is a no-op and is refused.
	if _, err := back.CorrectMatch(testGuildID, recorded.MatchID, SideRed); !errors.Is(err, ErrNoOpCorrection) {
		t.Errorf("expected ErrNoOpCorrection, got %v", err)
	}

	// A genuine re-flip is accepted and lands everyone back where they were.
	reflipped, err := back.CorrectMatch(testGuildID, recorded.MatchID, SideBlue)
	if err != nil {
		t.Fatal(err)
	}
	if reflipped.Change != 32 {
		t.Errorf("expected a net ±32 re-flip, got %d", reflipped.Change)
	}
	for _, id := range blue {
		if got := playerRating(t, back, id); got != 1016 {
			t.Errorf("expected %s back at 1016, got %d", id, got)
		}
	}
}

func TestCorrectMatchPreservesLaterDrift(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	first, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	if err != nil {
		t.Fatal(err)
	}

	// A second match moves the live ratings before the correction lands.
	// 1016 vs 984, favorites win: round(32 × (1 − 0.5459)) = 15.
	if _, err := back.RecordMatch(testGuildID, blue, red, SideBlue); err != nil {
		t.Fatal(err)
	}
	if got := playerRating(t, back, blue[0]); got != 1031 {
		t.Fatalf("expected 1031 after two wins, got %d", got)
	}

	// Correcting the first match applies its ±32 on top of the current
	// ratings, the second match's outcome is left alone.
	if _, err := back.CorrectMatch(testGuildID, first.MatchID, SideRed); err != nil {
		t.Fatal(err)
	}
	if got := playerRating(t, back, blue[0]); got != 999 {
		t.Errorf("expected 1031-32 = 999 after correction, got %d", got)
	}
	if got := playerRating(t, back, red[0]); got != 1001 {
		t.Errorf("expected 969+32 = 1001 after correction, got %d", got)
	}
}

func TestCorrectMatchErrors(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	if _, err := back.CorrectMatch(testGuildID, util.NewUUIDAsBlob(), SideBlue); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}

	recorded, err := back.RecordMatch(testGuildID, blue, red, SideBlue)
	if err != nil {
		t.Fatal(err)
	}

	// Rows imported from before snapshots existed cannot be corrected.
	if err := back.transaction(func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE Match SET Snapshot = NULL WHERE ID = ?", recorded.MatchID)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := back.CorrectMatch(testGuildID, recorded.MatchID, SideRed); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestRatingsAreScopedPerGuild(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	if _, err := back.RecordMatch(testGuildID, blue, red, SideBlue); err != nil {
		t.Fatal(err)
	}

	// The same player seen in another guild starts from a fresh seed.
	player, err := back.GetPlayer("guild-other", blue[0])
	if err != nil {
		t.Fatal(err)
	}
	if player.Rating != DefaultRating {
		t.Errorf("expected a fresh %d rating in another guild, got %d", DefaultRating, player.Rating)
	}
}

func TestGetLeaderboard(t *testing.T) {
	back := createFixturedTestBack(t)
	blue, red := registerTestRoster(t, back)

	if _, err := back.RecordMatch(testGuildID, blue, red, SideBlue); err != nil {
		t.Fatal(err)
	}

	board, err := back.GetLeaderboard(testGuildID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != RosterSize {
		t.Fatalf("expected %d leaderboard rows, got %d", RosterSize, len(board))
	}

	for k := range board {
		if k > 0 && board[k].Rating > board[k-1].Rating {
			t.Fatalf("leaderboard not sorted by rating at row %d", k)
		}

		expectedWins, expectedLosses := 0, 1
		if board[k].Rating > DefaultRating {
			expectedWins, expectedLosses = 1, 0
		}
		if board[k].Wins != expectedWins || board[k].Losses != expectedLosses {
			t.Errorf("row %d: got %d-%d, expected %d-%d",
				k, board[k].Wins, board[k].Losses, expectedWins, expectedLosses)
		}
	}

	top, err := back.GetLeaderboard(testGuildID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Errorf("expected the leaderboard limit to apply, got %d rows", len(top))
	}
}
