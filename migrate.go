package main

import (
	"errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"poro/internal/util"
)

func migrateDatabase() error {
	migrator, err := migrate.New(
		"file://resources/migrations",
		"sqlite3://poro.db",
	)
	if err != nil {
		return err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	srcErr, dbErr := migrator.Close()
	if err := util.ConcatErrors([]error{srcErr, dbErr}); err != nil {
		log.Printf("warning: unable to close migrator: %s", err)
	}

	return nil
}
