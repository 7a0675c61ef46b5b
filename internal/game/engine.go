// internal/game/engine.go
//
// Game-state and letter-assessment engine for a single game.
// Responsibilities:
//   - Create games from a target word (uppercase, at least MinWordLength letters).
//   - Score guesses with the two-pass algorithm (exact matches claim first).
//   - Derive status (playing → won/lost) from the attempt history on demand.
//   - Convert to and from Record for persistence.
//
// A Game is not safe for concurrent use. Callers hold one Game per player and
// serialize turns for that player.

package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Game owns a target word and the ordered attempts made against it.
type Game struct {
	target   string
	attempts []string
}

// New constructs a game for targetWord.
// Returns ErrTooShort if the normalized word has fewer than MinWordLength letters.
func New(targetWord string) (*Game, error) {
	target := normalize(targetWord)
	if utf8.RuneCountInString(target) < MinWordLength {
		return nil, ErrTooShort
	}
	return &Game{target: target, attempts: []string{}}, nil
}

// FromRecord rebuilds a game from its persisted form.
// Every attempt must have the target's length.
func FromRecord(r Record) (*Game, error) {
	g, err := New(r.TargetWord)
	if err != nil {
		return nil, err
	}
	n := g.Len()
	for i, a := range r.Attempts {
		a = normalize(a)
		if utf8.RuneCountInString(a) != n {
			return nil, fmt.Errorf("attempt %d: %w", i, ErrLengthMismatch)
		}
		g.attempts = append(g.attempts, a)
	}
	return g, nil
}

// Record returns a copy of the game's persisted form.
func (g *Game) Record() Record {
	return Record{TargetWord: g.target, Attempts: slices.Clone(g.attempts)}
}

// MarshalJSON encodes the game as its Record.
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record())
}

// UnmarshalJSON decodes a Record and validates it through FromRecord.
func (g *Game) UnmarshalJSON(b []byte) error {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	restored, err := FromRecord(r)
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}

// Target returns the uppercase target word.
func (g *Game) Target() string { return g.target }

// Len returns the number of letters in the target word.
func (g *Game) Len() int { return utf8.RuneCountInString(g.target) }

// Attempts returns a copy of the attempts made so far, in arrival order.
func (g *Game) Attempts() []string { return slices.Clone(g.attempts) }

// Status derives the game status from the attempt history.
//   - Won if any attempt equals the target.
//   - Lost if not won and MaxAttempts attempts have been made.
//   - Playing otherwise.
func (g *Game) Status() Status {
	if slices.Contains(g.attempts, g.target) {
		return StatusWon
	}
	if len(g.attempts) >= MaxAttempts {
		return StatusLost
	}
	return StatusPlaying
}

// View re-assesses every stored attempt and returns it with the current status.
func (g *Game) View() View {
	v := View{Status: g.Status(), Attempts: make([][]LetterResult, 0, len(g.attempts))}
	for _, a := range g.attempts {
		res, err := Assess(g.target, a)
		if err != nil {
			// New, FromRecord and PlayTurn only ever store attempts of the target length.
			panic(fmt.Sprintf("game: stored attempt %q does not fit target: %v", a, err))
		}
		v.Attempts = append(v.Attempts, res)
	}
	return v
}

// PlayTurn validates and records a guess.
// Validation order: length first (ErrLengthMismatch), then game-over (ErrGameOver).
// The attempt history is unchanged on error.
func (g *Game) PlayTurn(candidate string) (View, error) {
	word := normalize(candidate)
	if utf8.RuneCountInString(word) != g.Len() {
		return View{}, fmt.Errorf("word must be %d letters long: %w", g.Len(), ErrLengthMismatch)
	}
	if g.Status().Over() {
		return View{}, ErrGameOver
	}
	g.attempts = append(g.attempts, word)
	return g.View(), nil
}

// AttemptedLetters returns every distinct letter guessed so far, sorted ascending.
func (g *Game) AttemptedLetters() []rune {
	var letters []rune
	for _, attempt := range g.View().Attempts {
		letters = append(letters, lo.Map(attempt, func(l LetterResult, _ int) rune { return l.Letter })...)
	}
	letters = lo.Uniq(letters)
	slices.Sort(letters)
	return letters
}

// Assess compares candidate against target and returns one LetterResult per position.
// Both words are uppercased first. Returns ErrLengthMismatch if their lengths differ.
//
// Pass 1:
//   - Exact position matches are Correct and claim one occurrence of their letter.
//   - Other letters found in the target are tentatively Present; anything else is Absent.
//
// Pass 2:
//   - Walking left to right, a tentative Present keeps its mark only while the letter
//     still has unclaimed occurrences in the target; the excess is demoted to Absent.
//
// A letter that occurs k times in the target is marked Correct or Present at most k times.
func Assess(target, candidate string) ([]LetterResult, error) {
	t := []rune(normalize(target))
	c := []rune(normalize(candidate))
	if len(t) != len(c) {
		return nil, fmt.Errorf("word must be %d letters long: %w", len(t), ErrLengthMismatch)
	}

	counts := make(map[rune]int, len(t))
	for _, r := range t {
		counts[r]++
	}

	res := make([]LetterResult, len(c))
	claimed := make(map[rune]int, len(c))

	// First pass: exact matches and tentative presents.
	for i, r := range c {
		switch {
		case r == t[i]:
			res[i] = LetterResult{Letter: r, Mark: MarkCorrect}
		case counts[r] > 0:
			res[i] = LetterResult{Letter: r, Mark: MarkPresent}
		default:
			res[i] = LetterResult{Letter: r, Mark: MarkAbsent}
			continue
		}
		claimed[r]++
	}

	// Second pass: exact matches own their occurrences; presents spend what is left.
	budget := make(map[rune]int, len(counts))
	for r, n := range counts {
		budget[r] = n
	}
	for _, l := range res {
		if l.Mark == MarkCorrect {
			budget[l.Letter]--
		}
	}
	for i, l := range res {
		if l.Mark != MarkPresent || claimed[l.Letter] <= counts[l.Letter] {
			continue
		}
		if budget[l.Letter] > 0 {
			budget[l.Letter]--
			continue
		}
		res[i].Mark = MarkAbsent
	}
	return res, nil
}

// normalize uppercases a word.
func normalize(s string) string { return strings.ToUpper(s) }
