// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Mark: per-letter result of an assessed guess (correct/present/absent).
//   - LetterResult: one guessed letter plus its mark.
//   - Status: derived game status (playing/won/lost).
//   - View: status plus the assessed attempt history.
//   - Record: the plain data form of a Game used by persistence layers.

package game

import (
	"encoding/json"
	"errors"
	"unicode/utf8"
)

const (
	// MinWordLength is the shortest target word a game accepts.
	MinWordLength = 3
	// MaxAttempts is the turn limit; the game is lost after this many non-winning attempts.
	MaxAttempts = 6
)

var (
	ErrTooShort       = errors.New("target word must be at least 3 letters long")
	ErrLengthMismatch = errors.New("word length does not match target")
	ErrGameOver       = errors.New("game is over")
)

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter matches the target letter at the same position.
//   - "present": letter exists in the target at another position, within its occurrence budget.
//   - "absent":  letter is not in the target, or the target has no occurrences left for it.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// LetterResult is the assessment of one position of a guess.
type LetterResult struct {
	Letter rune
	Mark   Mark
}

type letterResultJSON struct {
	Letter string `json:"letter"`
	Mark   Mark   `json:"mark"`
}

// MarshalJSON encodes the letter as a one-character string.
func (l LetterResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(letterResultJSON{Letter: string(l.Letter), Mark: l.Mark})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (l *LetterResult) UnmarshalJSON(b []byte) error {
	var v letterResultJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	r, size := utf8.DecodeRuneInString(v.Letter)
	if size == 0 || size != len(v.Letter) {
		return errors.New("letter must be a single character")
	}
	l.Letter, l.Mark = r, v.Mark
	return nil
}

// Status is a coarse representation of a game's progress.
// It is never stored; Game.Status recomputes it from the attempt history.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Over reports whether s is a terminal status.
func (s Status) Over() bool { return s == StatusWon || s == StatusLost }

// View is the derived, read-only picture of a game returned to callers.
type View struct {
	Status   Status           `json:"status"`
	Attempts [][]LetterResult `json:"attempts"`
}

// Record is the serializable form of a Game.
type Record struct {
	TargetWord string   `json:"target_word"`
	Attempts   []string `json:"attempts"`
}
