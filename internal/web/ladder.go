package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"poro/internal/back"
	"poro/internal/util"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

func parseSide(v string) (back.Side, error) {
	switch v {
	case "blue":
		return back.SideBlue, nil
	case "red":
		return back.SideRed, nil
	default:
		return 0, fmt.Errorf("invalid winner %q, expected \"blue\" or \"red\"", v)
	}
}

func (s *Server) postTeams(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Players []string `json:"players"` // Discord IDs
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	blue, red, err := s.back.GenerateTeams(chi.URLParam(r, "guildID"), payload.Players)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusOK, map[string]interface{}{
		"blue": teamPayload(blue),
		"red":  teamPayload(red),
	})
}

func teamPayload(t back.Team) map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(t.Players))
	for k := range t.Players {
		players = append(players, map[string]interface{}{
			"discord_id": t.Players[k].DiscordID,
			"name":       t.Players[k].Name,
			"rating":     t.Players[k].Rating,
		})
	}

	return map[string]interface{}{
		"players":        players,
		"average_rating": t.AverageRating(),
	}
}

func (s *Server) postMatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Blue   []string `json:"blue"`
		Red    []string `json:"red"`
		Winner string   `json:"winner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}
	winner, err := parseSide(payload.Winner)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	changes, err := s.back.RecordMatch(chi.URLParam(r, "guildID"), payload.Blue, payload.Red, winner)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusCreated, changesPayload(changes))
}

func (s *Server) postCorrection(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	var payload struct {
		Winner string `json:"winner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}
	winner, err := parseSide(payload.Winner)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	changes, err := s.back.CorrectMatch(chi.URLParam(r, "guildID"), util.UUIDAsBlob(matchID), winner)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.response(w, http.StatusOK, changesPayload(changes))
}

func changesPayload(changes back.MMRChanges) map[string]interface{} {
	return map[string]interface{}{
		"match_id": changes.MatchID,
		"winner":   changes.Winner.String(),
		"change":   changes.Change,
		"deltas":   changes.Deltas,
	}
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	leaderboard, err := s.back.GetLeaderboard(chi.URLParam(r, "guildID"), limit)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, leaderboard)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	history, err := s.back.GetMatchHistory(
		chi.URLParam(r, "guildID"),
		chi.URLParam(r, "discordID"),
		limit,
	)
	if err != nil {
		s.backError(w, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, history)
}

func (s *Server) getCalibration(w http.ResponseWriter, r *http.Request) {
	report, err := s.back.GetCalibrationReport(chi.URLParam(r, "guildID"))
	if err != nil {
		s.backError(w, err)
		return
	}

	s.cache(w, "public", 5*time.Minute)
	s.response(w, http.StatusOK, report)
}
