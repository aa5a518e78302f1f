package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"poro/internal/back"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	switch flag.Arg(0) { // nolint:gocritic
	case "version":
		fmt.Fprintf(os.Stdout, "poro %s\n", Version)
	case "serve":
		b, err := back.New("sqlite3", "./poro.db")
		if err != nil {
			log.Fatal(err)
		}
		if err := serve(b); err != nil {
			log.Fatal(err)
		}
	case "migrate":
		if err := migrateDatabase(); err != nil {
			log.Fatal(err)
		}
	case "dev:fixtures":
		if err := loadFixtures(); err != nil {
			log.Fatal(err)
		}
	case "help":
		fmt.Fprint(os.Stdout, help())
		return
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}
}

func help() string {
	return fmt.Sprintf(`
poro runs a per-guild competitive 5v5 ladder over Discord: team balancing,
Elo ratings, match records, and calibration stats.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      upgrade the database schema to the current version
    serve        run the Discord bot and the HTTP API
    version      display the current version
`,
		os.Args[0],
	)
}
