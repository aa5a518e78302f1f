package util

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// NullString is a shorthand to create a valid null.String or an invalid
// one if the given string is empty.
func NullString(v string) null.String {
	return null.NewString(v, v != "")
}

type TransactionCallback func(*sqlx.Tx) error

func Transaction(ctx context.Context, db *sqlx.DB, cb TransactionCallback) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}
