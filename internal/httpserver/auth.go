package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/badwordle/internal/session"
)

const (
	anonCookieName = "wordle_anon"
	anonTTL        = 180 * 24 * time.Hour
	rolePlayer     = "player"
	roleAdmin      = "admin"
	roleAnon       = "anon"
)

// claims are the JWT claims for both player and admin tokens.
type claims struct {
	Handle    string `json:"handle,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// ctxPlayerKey is the context key type for storing session.Who.
type ctxPlayerKey struct{}

// playerFrom returns the caller placed in context by withPlayer.
func playerFrom(r *http.Request) session.Who {
	who, _ := r.Context().Value(ctxPlayerKey{}).(session.Who)
	return who
}

// signJWT creates an HS256 token expiring after ttl.
func (s *Server) signJWT(c claims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(exp)
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseJWT verifies an HS256 token and returns its claims.
func (s *Server) parseJWT(tok string) (*claims, error) {
	var c claims
	t, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid || c.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return &c, nil
}

// withPlayer identifies the caller from a player token, falling back to an
// anonymous cookie. It never rejects a request.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var who session.Who
		if tok := s.bearerOrCookie(r); tok != "" {
			if c, err := s.parseJWT(tok); err == nil && c.Role == rolePlayer {
				who = session.Who{ID: c.Subject, Handle: c.Handle, FirstName: c.FirstName, LastName: c.LastName}
			}
		}
		if who.ID == "" {
			who.ID = s.ensureAnonID(w, r)
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, who)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type playerReq struct {
	Handle    string `json:"handle"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type tokenRes struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handlePlayer names the current caller and issues a player token for them.
// The caller keeps their id, so games played anonymously carry over.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	var body playerReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	body.Handle = strings.TrimSpace(body.Handle)
	if err := validateHandle(body.Handle); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	who := playerFrom(r)
	c := claims{
		Handle:           body.Handle,
		FirstName:        strings.TrimSpace(body.FirstName),
		LastName:         strings.TrimSpace(body.LastName),
		Role:             rolePlayer,
		RegisteredClaims: jwt.RegisteredClaims{Subject: who.ID},
	}
	tok, exp, err := s.signJWT(c, s.tokenTTL())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setCookie(w, s.opts.CookieName, tok, exp)
	writeJSON(w, http.StatusOK, tokenRes{ID: who.ID, Token: tok, ExpiresAt: exp})
}

// validateHandle enforces basic handle rules.
func validateHandle(u string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("handle must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("handle: letters, numbers, underscore only")
		}
	}
	return nil
}

type adminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAdminLogin checks the configured admin credentials and returns an admin token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body adminLoginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if s.opts.AdminUser == "" || body.Username != s.opts.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(s.opts.AdminPasswordHash), []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "You are not an admin.")
		return
	}
	tok, exp, err := s.signJWT(claims{Role: roleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: body.Username}}, s.tokenTTL())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{ID: body.Username, Token: tok, ExpiresAt: exp})
}

// requireAdmin enforces a valid admin bearer token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c, err := s.parseJWT(tok)
		if err != nil || c.Role != roleAdmin {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureAnonID returns the id from a valid anon token cookie, or issues a
// token for a fresh id. Unsigned or tampered cookies get a fresh id.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(anonCookieName); err == nil && ck.Value != "" {
		if c, err := s.parseJWT(ck.Value); err == nil && c.Role == roleAnon {
			return c.Subject
		}
	}
	id := uuid.NewString()
	tok, exp, err := s.signJWT(claims{Role: roleAnon, RegisteredClaims: jwt.RegisteredClaims{Subject: id}}, anonTTL)
	if err != nil {
		log.Error().Err(err).Msg("sign anon token")
		return id
	}
	s.setCookie(w, anonCookieName, tok, exp)
	return id
}

func (s *Server) tokenTTL() time.Duration {
	return time.Duration(s.opts.JWTExpiresDays) * 24 * time.Hour
}

// setCookie writes an HttpOnly cookie with attributes suited to the environment.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// bearerOrCookie extracts a bearer token, or the player token cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if tok := bearer(r); tok != "" {
		return tok
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}
