// internal/session/session.go
//
// Per-player game sessions.
// Responsibilities:
//   - Own one game per player, restored from and saved to a store.Store around every call.
//   - Serialize calls for the same player; different players run in parallel.
//   - Choose targets (next unplayed word, or the word of the day).
//   - Keep score (games started, games won) and the played/won word history.
//   - Report new players, wins and losses to a notify.Notifier.
//
// Guesses that fail validation (unknown word, wrong length) are reported as moves,
// not errors, and never count as a turn.

package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/badwordle/internal/daily"
	"github.com/robalobadob/badwordle/internal/game"
	"github.com/robalobadob/badwordle/internal/notify"
	"github.com/robalobadob/badwordle/internal/store"
	"github.com/robalobadob/badwordle/internal/words"
)

var (
	ErrNoActiveGame = errors.New("no active game")
	ErrDailyPlayed  = errors.New("daily challenge already played")
)

// anonymousHandle names leaderboard entries for players without a handle.
const anonymousHandle = "anonymous"

// Move is the outcome of a guess.
type Move string

const (
	MoveValid         Move = "valid"
	MoveInvalidWord   Move = "invalid_word"
	MoveInvalidLength Move = "invalid_length"
	MoveWon           Move = "won"
	MoveLost          Move = "lost"
)

// Who identifies the player making a call. Names are optional and only
// refresh what is stored.
type Who struct {
	ID        string
	Handle    string
	FirstName string
	LastName  string
}

// Started describes a freshly created game.
type Started struct {
	Length    int         `json:"length"`
	FirstGame bool        `json:"firstGame"`
	Score     store.Score `json:"score"` // score before this game was counted
	Daily     string      `json:"daily,omitempty"`
}

// Turn is the result of a guess or a status read.
type Turn struct {
	Move     Move        `json:"move,omitempty"`
	Length   int         `json:"length"`
	Game     game.View   `json:"game"`
	Letters  []string    `json:"letters"`
	Score    store.Score `json:"score"`
	Target   string      `json:"target,omitempty"` // revealed once the game is over
	Attempts int         `json:"attempts"`
}

// Manager runs sessions for all players.
type Manager struct {
	words    *words.List
	players  store.Store
	results  daily.Store
	notifier notify.Notifier
	salt     string
	now      func() time.Time
	locks    keyedMutex
}

// Option customizes a Manager.
type Option func(*Manager)

// WithDailySalt sets the salt used to pick the word of the day.
func WithDailySalt(salt string) Option { return func(m *Manager) { m.salt = salt } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager wires the session layer. A nil notifier discards events.
func NewManager(wl *words.List, players store.Store, results daily.Store, n notify.Notifier, opts ...Option) *Manager {
	if n == nil {
		n = discard{}
	}
	m := &Manager{words: wl, players: players, results: results, notifier: n, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

type discard struct{}

func (discard) Notify(notify.Kind, string, string) {}

// load returns the stored player, creating (but not saving) a new one on first contact.
func (m *Manager) load(ctx context.Context, who Who) (*store.Player, error) {
	p, err := m.players.Load(ctx, who.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = &store.Player{ID: who.ID}
		m.notifier.Notify(notify.KindNewPlayer, who.ID, fmt.Sprintf("New user: %s (%s)", who.FirstName, who.Handle))
	case err != nil:
		return nil, fmt.Errorf("load player %s: %w", who.ID, err)
	}
	if who.Handle != "" {
		p.Handle = who.Handle
	}
	if who.FirstName != "" {
		p.FirstName = who.FirstName
	}
	if who.LastName != "" {
		p.LastName = who.LastName
	}
	return p, nil
}

func (m *Manager) save(ctx context.Context, p *store.Player) error {
	if err := m.players.Save(ctx, p); err != nil {
		return fmt.Errorf("save player %s: %w", p.ID, err)
	}
	return nil
}

// current restores the player's last game, or returns ErrNoActiveGame.
func current(p *store.Player) (*game.Game, error) {
	if p.LastGame == nil {
		return nil, ErrNoActiveGame
	}
	g, err := game.FromRecord(*p.LastGame)
	if err != nil {
		return nil, fmt.Errorf("restore game for %s: %w", p.ID, err)
	}
	return g, nil
}

// Start begins a new game with the first target the player has not played yet.
// Any unfinished game is abandoned; an abandoned daily game counts as lost.
func (m *Manager) Start(ctx context.Context, who Who) (Started, error) {
	defer m.locks.Lock(who.ID)()

	p, err := m.load(ctx, who)
	if err != nil {
		return Started{}, err
	}
	if p.Daily != nil && p.LastGame != nil {
		if g, err := current(p); err == nil && !g.Status().Over() {
			m.recordDaily(ctx, p, false, len(p.LastGame.Attempts))
		}
	}
	played := make(map[string]struct{}, len(p.PlayedWords))
	for _, w := range p.PlayedWords {
		played[w] = struct{}{}
	}
	target := m.words.NextTarget(played)
	s, err := m.begin(ctx, p, target, nil)
	if err != nil {
		return Started{}, err
	}
	log.Info().Str("player", p.ID).Str("handle", p.Handle).Str("target", target).Msg("starting new game")
	return s, nil
}

// StartDaily begins (or resumes) today's daily challenge.
// Returns ErrDailyPlayed once the player has finished today's word.
func (m *Manager) StartDaily(ctx context.Context, who Who) (Started, error) {
	defer m.locks.Lock(who.ID)()

	now := m.now()
	date := daily.DateKey(now)
	done, err := m.results.AlreadyPlayed(ctx, who.ID, date)
	if err != nil {
		return Started{}, fmt.Errorf("daily lookup: %w", err)
	}
	if done {
		return Started{}, ErrDailyPlayed
	}

	p, err := m.load(ctx, who)
	if err != nil {
		return Started{}, err
	}
	if p.Daily != nil && p.Daily.Date == date {
		g, err := current(p)
		if err != nil {
			return Started{}, err
		}
		if g.Status().Over() {
			return Started{}, ErrDailyPlayed
		}
		return Started{Length: g.Len(), Score: p.Score, Daily: date}, nil
	}

	idx, target := m.words.Daily(now, m.salt)
	s, err := m.begin(ctx, p, target, &store.Daily{Date: date, WordIndex: idx, Start: now})
	if err != nil {
		return Started{}, err
	}
	log.Info().Str("player", p.ID).Str("date", date).Int("wordIndex", idx).Msg("starting daily game")
	return s, nil
}

func (m *Manager) begin(ctx context.Context, p *store.Player, target string, d *store.Daily) (Started, error) {
	g, err := game.New(target)
	if err != nil {
		return Started{}, fmt.Errorf("new game %q: %w", target, err)
	}
	rec := g.Record()
	s := Started{Length: g.Len(), FirstGame: p.Score.Games == 0, Score: p.Score}
	if d != nil {
		s.Daily = d.Date
	}

	p.LastGame = &rec
	p.Daily = d
	if !slices.Contains(p.PlayedWords, g.Target()) {
		p.PlayedWords = append(p.PlayedWords, g.Target())
	}
	p.Score.Games++
	if err := m.save(ctx, p); err != nil {
		return Started{}, err
	}
	return s, nil
}

// Guess plays word against the player's active game.
//   - ErrNoActiveGame if the player never started a game.
//   - game.ErrGameOver if the last game is finished.
//   - MoveInvalidWord / MoveInvalidLength leave the game untouched.
func (m *Manager) Guess(ctx context.Context, who Who, word string) (Turn, error) {
	defer m.locks.Lock(who.ID)()

	p, err := m.players.Load(ctx, who.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Turn{}, ErrNoActiveGame
	}
	if err != nil {
		return Turn{}, fmt.Errorf("load player %s: %w", who.ID, err)
	}
	g, err := current(p)
	if err != nil {
		return Turn{}, err
	}
	if g.Status().Over() {
		return Turn{}, game.ErrGameOver
	}

	word = strings.TrimSpace(word)
	if !m.words.IsValid(word) {
		return m.turn(p, g, MoveInvalidWord), nil
	}
	view, err := g.PlayTurn(word)
	if errors.Is(err, game.ErrLengthMismatch) {
		return m.turn(p, g, MoveInvalidLength), nil
	}
	if err != nil {
		return Turn{}, err
	}
	log.Info().Str("player", p.ID).Str("guess", strings.ToUpper(word)).Msg("guessed")

	rec := g.Record()
	p.LastGame = &rec
	move := MoveValid
	switch view.Status {
	case game.StatusWon:
		move = MoveWon
		p.Score.Wins++
		if !slices.Contains(p.WonWords, g.Target()) {
			p.WonWords = append(p.WonWords, g.Target())
		}
		m.notifier.Notify(notify.KindWon, p.ID, fmt.Sprintf("%s (%s) won with %s", p.FirstName, p.Handle, g.Target()))
		if p.Daily != nil {
			m.recordDaily(ctx, p, true, len(rec.Attempts))
		}
	case game.StatusLost:
		move = MoveLost
		m.notifier.Notify(notify.KindLost, p.ID, fmt.Sprintf("%s (%s) lost with %s (target: %s)",
			p.FirstName, p.Handle, strings.ToUpper(word), g.Target()))
		if p.Daily != nil {
			m.recordDaily(ctx, p, false, len(rec.Attempts))
		}
	}
	if err := m.save(ctx, p); err != nil {
		return Turn{}, err
	}
	return m.turn(p, g, move), nil
}

// recordDaily stores a finished daily game so the date cannot be replayed.
// Failures are logged; the game itself is already over.
func (m *Manager) recordDaily(ctx context.Context, p *store.Player, won bool, guesses int) {
	handle := p.Handle
	if handle == "" {
		handle = anonymousHandle
	}
	r := daily.Result{
		PlayerID:  p.ID,
		Handle:    handle,
		Date:      p.Daily.Date,
		WordIndex: p.Daily.WordIndex,
		Won:       won,
		Guesses:   guesses,
		ElapsedMs: daily.Elapsed(p.Daily.Start, m.now()),
	}
	if err := m.results.InsertResult(ctx, r); err != nil {
		log.Warn().Err(err).Str("player", p.ID).Str("date", r.Date).Msg("insert daily result")
	}
}

// Current returns the player's active or most recent game.
func (m *Manager) Current(ctx context.Context, who Who) (Turn, error) {
	defer m.locks.Lock(who.ID)()

	p, err := m.players.Load(ctx, who.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Turn{}, ErrNoActiveGame
	}
	if err != nil {
		return Turn{}, fmt.Errorf("load player %s: %w", who.ID, err)
	}
	g, err := current(p)
	if err != nil {
		return Turn{}, err
	}
	return m.turn(p, g, ""), nil
}

// Score returns the player's score; played is false for unknown players.
func (m *Manager) Score(ctx context.Context, who Who) (score store.Score, played bool, err error) {
	p, err := m.players.Load(ctx, who.ID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Score{}, false, nil
	}
	if err != nil {
		return store.Score{}, false, fmt.Errorf("load player %s: %w", who.ID, err)
	}
	return p.Score, p.Score.Games > 0, nil
}

// Leaderboard returns the daily leaderboard for date (YYYY-MM-DD), default today.
// A malformed date fails with daily.ErrBadDate.
func (m *Manager) Leaderboard(ctx context.Context, date string, limit int) (string, []daily.LBRow, error) {
	if date == "" {
		date = daily.DateKey(m.now())
	}
	date, err := daily.ParseDate(date)
	if err != nil {
		return "", nil, err
	}
	rows, err := m.results.Leaderboard(ctx, date, limit)
	return date, rows, err
}

func (m *Manager) turn(p *store.Player, g *game.Game, move Move) Turn {
	view := g.View()
	letters := g.AttemptedLetters()
	t := Turn{
		Move:     move,
		Length:   g.Len(),
		Game:     view,
		Score:    p.Score,
		Attempts: len(view.Attempts),
		Letters:  make([]string, 0, len(letters)),
	}
	for _, r := range letters {
		t.Letters = append(t.Letters, string(r))
	}
	if view.Status.Over() {
		t.Target = g.Target()
	}
	return t
}
