package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/badwordle/internal/daily"
	"github.com/robalobadob/badwordle/internal/notify"
	"github.com/robalobadob/badwordle/internal/session"
	"github.com/robalobadob/badwordle/internal/store"
	"github.com/robalobadob/badwordle/internal/words"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	wl, err := words.New([]string{"crane"}, []string{"trace", "slate"})
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	feed := notify.NewFeed(10)
	sessions := session.NewManager(wl, store.NewMemoryStore(), daily.NewMemoryStore(), feed)
	return New(sessions, feed, Options{
		GameName:          "Bad Wordle",
		JWTSecret:         "test-secret",
		AdminUser:         "root",
		AdminPasswordHash: string(hash),
	})
}

// do sends a request with an optional bearer token and decodes a JSON response into out.
func do(t *testing.T, s *Server, method, path, token, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func register(t *testing.T, s *Server, handle string) string {
	t.Helper()
	var tok tokenRes
	rec := do(t, s, http.MethodPost, "/player", "", `{"handle":"`+handle+`","firstName":"Ada"}`, &tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.ID)
	return tok.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)
	tok := register(t, s, "ada_l")

	var res guessRes
	rec := do(t, s, http.MethodPost, "/game/guess", tok, `{"guess":"trace"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "no game started yet")

	var started newGameRes
	rec = do(t, s, http.MethodPost, "/game/new", tok, "", &started)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, started.Length)
	assert.Contains(t, started.Message, "Hi Ada")

	rec = do(t, s, http.MethodPost, "/game/guess", tok, `{"guess":"zzzzz"}`, &res)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, session.MoveInvalidWord, res.Move)

	rec = do(t, s, http.MethodPost, "/game/guess", tok, `{"guess":"trace"}`, &res)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.MoveValid, res.Move)
	require.Len(t, res.Game.Attempts, 1)

	rec = do(t, s, http.MethodPost, "/game/guess", tok, `{"guess":"crane"}`, &res)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.MoveWon, res.Move)
	assert.Contains(t, res.Message, "You won!")

	rec = do(t, s, http.MethodPost, "/game/guess", tok, `{"guess":"crane"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "game_over")

	rec = do(t, s, http.MethodGet, "/game?format=text", tok, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "Your attempts:")

	var score map[string]any
	do(t, s, http.MethodGet, "/score", tok, "", &score)
	assert.Equal(t, true, score["played"])
	assert.Equal(t, "Your score: 100% (1/1)", score["message"])
}

func TestBadJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/guess", "", `{`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnonymousCookie(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var anon *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == anonCookieName {
			anon = c
		}
	}
	require.NotNil(t, anon)

	req := httptest.NewRequest(http.MethodGet, "/game", nil)
	req.AddCookie(anon)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "cookie identifies the same player")
}

func TestForgedAnonCookieGetsFreshID(t *testing.T) {
	s := newTestServer(t)

	var victim tokenRes
	rec := do(t, s, http.MethodPost, "/player", "", `{"handle":"victim"}`, &victim)
	require.Equal(t, http.StatusOK, rec.Code)
	do(t, s, http.MethodPost, "/game/new", victim.Token, "", nil)
	do(t, s, http.MethodPost, "/game/guess", victim.Token, `{"guess":"trace"}`, nil)

	forged := &http.Cookie{Name: anonCookieName, Value: victim.ID}

	req := httptest.NewRequest(http.MethodGet, "/game", nil)
	req.AddCookie(forged)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code, "forged cookie must not reach the victim's game")

	req = httptest.NewRequest(http.MethodPost, "/player", strings.NewReader(`{"handle":"mallory"}`))
	req.AddCookie(forged)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok tokenRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.NotEqual(t, victim.ID, tok.ID)
	assert.NotEmpty(t, tok.ID)
}

func TestPlayerHandleValidation(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/player", "", `{"handle":"a b"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyRoutes(t *testing.T) {
	s := newTestServer(t)
	tok := register(t, s, "daily_dan")

	var started newGameRes
	rec := do(t, s, http.MethodPost, "/daily/new", tok, "", &started)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, started.Daily)

	var res guessRes
	rec = do(t, s, http.MethodPost, "/daily/guess", tok, `{"guess":"crane"}`, &res)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.MoveWon, res.Move)

	rec = do(t, s, http.MethodPost, "/daily/new", tok, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var lb lbRes
	rec = do(t, s, http.MethodGet, "/daily/leaderboard", "", "", &lb)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 1, lb.Top[0].Guesses)
	assert.Equal(t, "daily_dan", lb.Top[0].Handle)
	assert.NotContains(t, rec.Body.String(), "playerId")

	rec = do(t, s, http.MethodGet, "/daily/leaderboard?date=tomorrow", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_date")

	rec = do(t, s, http.MethodGet, "/daily/leaderboard?limit=abc", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin(t *testing.T) {
	s := newTestServer(t)
	playerTok := register(t, s, "ada_l")
	do(t, s, http.MethodPost, "/game/new", playerTok, "", nil)

	rec := do(t, s, http.MethodPost, "/admin/login", "", `{"username":"root","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/admin/events", playerTok, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "player tokens are not admin tokens")

	var tok tokenRes
	rec = do(t, s, http.MethodPost, "/admin/login", "", `{"username":"root","password":"hunter22"}`, &tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []notify.Event
	rec = do(t, s, http.MethodGet, "/admin/events", tok.Token, "", &events)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, events, 1)
	assert.Equal(t, notify.KindNewPlayer, events[0].Kind)

	rec = do(t, s, http.MethodGet, "/admin/events?after=1", tok.Token, "", &events)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, events)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
