package back

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"poro/internal/util"
)

// Back holds the whole ladder state: player ratings, the match ledger, and
// per-guild settings. Every public operation runs in its own transaction,
// SQLite serializes writers for us, so two concurrent match reports touching
// the same players can't interleave their read-modify-write rating updates.
type Back struct {
	db *sqlx.DB

	// rand is shared by concurrent team generation requests.
	randMu sync.Mutex
	rand   *rand.Rand
}

func New(sqlDriver string, sqlDSN string) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could
	// ever come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// Single writer, see the Back doc comment.
	db.SetMaxOpenConns(1)

	return &Back{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())), // nolint:gosec
	}, nil
}

func (b *Back) transaction(cb util.TransactionCallback) error {
	return util.Transaction(context.Background(), b.db, cb)
}

// intn returns a random int in [0, n) from the shared source.
func (b *Back) intn(n int) int {
	b.randMu.Lock()
	defer b.randMu.Unlock()
	return b.rand.Intn(n)
}

// seedRand makes team generation deterministic, tests only.
func (b *Back) seedRand(seed int64) {
	b.randMu.Lock()
	defer b.randMu.Unlock()
	b.rand = rand.New(rand.NewSource(seed)) // nolint:gosec
}
