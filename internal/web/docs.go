package web

import (
	"log"
	"net/http"
	"time"

	"github.com/russross/blackfriday/v2"
)

const docsMarkdown = `# poro HTTP API

Read-only consumers (overlays, spreadsheets) and trusted tools talk to the
ladder through this API. Everything is scoped to a Discord guild ID.

## Teams

* ` + "`POST /v1/guild/{guildID}/teams`" + ` with ` + "`{\"players\": [ten Discord IDs]}`" + `
  returns the two most even fives. Nothing is persisted.
* ` + "`POST /v1/guild/{guildID}/matches`" + ` with
  ` + "`{\"blue\": [...], \"red\": [...], \"winner\": \"blue\"}`" + `
  records an outcome and moves the ratings.
* ` + "`POST /v1/guild/{guildID}/match/{matchID}/correct`" + ` with
  ` + "`{\"winner\": \"red\"}`" + ` fixes a misreported result.

## Standings

* ` + "`GET /v1/guild/{guildID}/leaderboard?limit=N`" + `
* ` + "`GET /v1/guild/{guildID}/player/{discordID}/history?limit=N`" + `
* ` + "`GET /v1/guild/{guildID}/calibration`" + `
* ` + "`GET /v1/guild/{guildID}/charts/stabilization.svg`" + `
* ` + "`GET /v1/guild/{guildID}/charts/calibration.svg`" + `
`

func (s *Server) docs(w http.ResponseWriter, _ *http.Request) {
	s.cache(w, "public", 1*time.Hour)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err := w.Write(blackfriday.Run([]byte(docsMarkdown))); err != nil {
		log.Printf("error: unable to send docs: %s", err)
	}
}
