// internal/httpserver/server.go
//
// HTTP server wiring for the word game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request logs).
//   - Public endpoints: "/", "/health", "/help".
//   - Player identity: POST /player issues a token; otherwise an anonymous cookie is used.
//   - Game endpoints: POST /game/new, POST /game/guess, GET /game, GET /score.
//   - Daily Challenge endpoints: mounted under /daily.
//   - Admin endpoints (admin token): POST /admin/login, GET /admin/events.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Game state lives in the session layer; handlers only translate HTTP to session calls.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/badwordle/internal/game"
	"github.com/robalobadob/badwordle/internal/notify"
	"github.com/robalobadob/badwordle/internal/render"
	"github.com/robalobadob/badwordle/internal/session"
)

// Options carries the settings handlers need.
type Options struct {
	GameName          string
	JWTSecret         string
	JWTExpiresDays    int
	CookieName        string
	ClientOrigin      string
	Production        bool
	AdminUser         string
	AdminPasswordHash string
}

// Server bundles the router, the session manager and the admin feed.
type Server struct {
	r        *chi.Mux
	sessions *session.Manager
	feed     *notify.Feed
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions *session.Manager, feed *notify.Feed, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "wordle_token"
	}
	if opts.JWTExpiresDays <= 0 {
		opts.JWTExpiresDays = 14
	}
	s := &Server{r: chi.NewRouter(), sessions: sessions, feed: feed, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"badwordle","endpoints":["/health","/help","POST /player","POST /game/new","POST /game/guess","GET /game","GET /score","/daily/*","/admin/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/help", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, render.Help(s.opts.GameName))
	})

	// Player-scoped routes: token if present, anonymous cookie otherwise.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withPlayer)
		r.Post("/player", s.handlePlayer)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game", s.handleCurrent)
		r.Get("/score", s.handleScore)
		s.mountDaily(r)
	})

	s.mountAdmin(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one structured log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameRes struct {
	session.Started
	Message string `json:"message"`
}

// handleNewGame starts a new game for the caller, abandoning any unfinished one.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	who := playerFrom(r)
	st, err := s.sessions.Start(r.Context(), who)
	if err != nil {
		log.Error().Err(err).Str("player", who.ID).Msg("start game")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{Started: st, Message: render.Welcome(who.FirstName, s.opts.GameName, st)})
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	session.Turn
	Message string `json:"message"`
}

// handleGuess plays one guess. Invalid guesses answer 400 and do not use a turn.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	who := playerFrom(r)
	turn, err := s.sessions.Guess(r.Context(), who, req.Guess)
	if err != nil {
		s.sessionError(w, who, err)
		return
	}
	code := http.StatusOK
	if turn.Move == session.MoveInvalidWord || turn.Move == session.MoveInvalidLength {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, guessRes{Turn: turn, Message: render.Turn(turn)})
}

// handleCurrent returns the caller's game; ?format=text renders the board.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	who := playerFrom(r)
	turn, err := s.sessions.Current(r.Context(), who)
	if err != nil {
		s.sessionError(w, who, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		writeText(w, render.Turn(turn))
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

// handleScore reports the caller's score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	who := playerFrom(r)
	score, played, err := s.sessions.Score(r.Context(), who)
	if err != nil {
		s.sessionError(w, who, err)
		return
	}
	msg := "You have not played any games yet."
	if played {
		msg = "Your score: " + score.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": score, "played": played, "message": msg})
}

// sessionError maps session and game errors to responses.
func (s *Server) sessionError(w http.ResponseWriter, who session.Who, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveGame):
		writeError(w, http.StatusConflict, "no_active_game")
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "game_over")
	case errors.Is(err, session.ErrDailyPlayed):
		writeError(w, http.StatusConflict, "daily_played")
	default:
		log.Error().Err(err).Str("player", who.ID).Msg("session")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// ------------------------------- ADMIN -------------------------------------

// mountAdmin registers admin login and the gated event feed.
func (s *Server) mountAdmin(r chi.Router) {
	r.Post("/admin/login", s.handleAdminLogin)
	r.With(s.requireAdmin).Get("/admin/events", func(w http.ResponseWriter, r *http.Request) {
		var after uint64
		if v := r.URL.Query().Get("after"); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_after")
				return
			}
			after = n
		}
		writeJSON(w, http.StatusOK, s.feed.Since(after))
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s))
}
