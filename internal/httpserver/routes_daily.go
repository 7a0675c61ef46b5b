// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's game
//   - POST /daily/guess       → same as POST /game/guess
//   - GET  /daily/leaderboard → top wins for today (or ?date=YYYY-MM-DD), by handle
//
// Each player can finish the daily word once per day. Wins are recorded by the
// session layer when the winning guess is played.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/badwordle/internal/daily"
	"github.com/robalobadob/badwordle/internal/render"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/guess", s.handleGuess)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// handleDailyNew starts today's game, or 409 daily_played once it is finished.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	who := playerFrom(r)
	st, err := s.sessions.StartDaily(r.Context(), who)
	if err != nil {
		s.sessionError(w, who, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{Started: st, Message: render.Welcome(who.FirstName, s.opts.GameName, st)})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	date, rows, err := s.sessions.Leaderboard(r.Context(), r.URL.Query().Get("date"), limit)
	if errors.Is(err, daily.ErrBadDate) {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
