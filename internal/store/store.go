// internal/store/store.go
//
// Player persistence for the session layer.
// A Player carries everything the server remembers about someone between
// requests: identity, score, played/won target words, and the last game as a
// plain game.Record so it can be restored verbatim.
//
// Implementations:
//   - memory: map guarded by RWMutex, lost on restart.
//   - file:   one JSON document per player in a directory.
//   - sqlite: players table, word lists and game stored as JSON text.

package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robalobadob/badwordle/internal/game"
)

var ErrNotFound = errors.New("player not found")

// Score counts the games a player started and the games they won.
type Score struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// String formats the score as "NN% (wins/games)".
func (s Score) String() string {
	pct := 0.0
	if s.Games > 0 {
		pct = float64(s.Wins) / float64(s.Games) * 100
	}
	return fmt.Sprintf("%.0f%% (%d/%d)", pct, s.Wins, s.Games)
}

// Daily marks the last game as a daily challenge attempt.
type Daily struct {
	Date      string    `json:"date"`
	WordIndex int       `json:"wordIndex"`
	Start     time.Time `json:"start"`
}

// Player is the persisted state for one player.
type Player struct {
	ID          string       `json:"id"`
	Handle      string       `json:"handle,omitempty"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	PlayedWords []string     `json:"playedWords"`
	WonWords    []string     `json:"wonWords"`
	Score       Score        `json:"score"`
	LastGame    *game.Record `json:"lastGame,omitempty"`
	Daily       *Daily       `json:"daily,omitempty"`
}

// Store defines the persistence interface for players.
type Store interface {
	// Load returns the player with id, or ErrNotFound.
	Load(ctx context.Context, id string) (*Player, error)

	// Save persists or replaces the player.
	Save(ctx context.Context, p *Player) error
}

// fixup repairs records written before played words were tracked:
// every won word has been played.
func fixup(p *Player) *Player {
	if len(p.PlayedWords) < len(p.WonWords) {
		p.PlayedWords = slices.Clone(p.WonWords)
	}
	return p
}

// clone deep-copies p so stores never share memory with callers.
func clone(p *Player) *Player {
	c := *p
	c.PlayedWords = slices.Clone(p.PlayedWords)
	c.WonWords = slices.Clone(p.WonWords)
	if p.LastGame != nil {
		g := game.Record{TargetWord: p.LastGame.TargetWord, Attempts: slices.Clone(p.LastGame.Attempts)}
		c.LastGame = &g
	}
	if p.Daily != nil {
		d := *p.Daily
		c.Daily = &d
	}
	return &c
}
