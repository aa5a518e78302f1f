package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"poro/internal/back"
	"poro/internal/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", s.docs)

	// I indend the v1 to be a hacky, quick'n dirty implementation, with no
	// pagination nor any fancy stuff.
	r.Route("/v1/guild/{guildID}", func(r chi.Router) {
		r.Post("/teams", s.postTeams)
		r.Post("/matches", s.postMatch)
		r.Post("/match/{matchID}/correct", s.postCorrection)

		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/player/{discordID}/history", s.getHistory)
		r.Get("/calibration", s.getCalibration)
		r.Get("/charts/stabilization.svg", s.getStabilizationChart)
		r.Get("/charts/calibration.svg", s.getCalibrationChart)
	})

	return r
}

type Server struct {
	http *http.Server
	back *back.Back
}

func NewServer(back *back.Back) *Server {
	s := &Server{
		back: back,
	}

	s.http = &http.Server{
		Addr:         "127.0.0.1:3001",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

func (s *Server) error(w http.ResponseWriter, err error, code int) {
	log.Printf("error: %s", err)

	s.response(w, code, map[string]string{"error": err.Error()})
}

// backError picks the HTTP status matching a ladder error so handlers don't
// each redo the mapping.
func (s *Server) backError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, back.ErrMatchNotFound),
		errors.Is(err, util.ErrPublic("")):
		s.error(w, err, http.StatusNotFound)
	case errors.Is(err, back.ErrNoOpCorrection):
		s.error(w, err, http.StatusConflict)
	case errors.Is(err, back.ErrInvalidInput{}),
		errors.Is(err, back.ErrIncompleteRoster{}),
		errors.Is(err, back.ErrNoSnapshot):
		s.error(w, err, http.StatusUnprocessableEntity)
	default:
		s.error(w, err, http.StatusInternalServerError)
	}
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
