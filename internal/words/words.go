// internal/words/words.go
//
// Word list management for the session layer.
//
// Responsibilities:
//   - Load target and valid word lists from files, or fall back to embedded defaults.
//   - Maintain a lookup set of valid guesses (targets are always valid).
//   - Pick the next target for a player (first unplayed, otherwise random).
//   - Pick the word of the day for the daily challenge.
//
// File format:
//   One word per line. Blank lines and lines starting with '#' are skipped.
//   Words are trimmed and uppercased; words shorter than game.MinWordLength
//   or containing non-letters are dropped.
//
// An empty valid list disables guess validation: every word is accepted.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/badwordle/assets"
	"github.com/robalobadob/badwordle/internal/daily"
	"github.com/robalobadob/badwordle/internal/game"
)

var ErrEmpty = errors.New("words: target list is empty")

// List holds the target words and the set of valid guesses.
// daily keeps the targets in file order so the word of the day survives Shuffle.
type List struct {
	targets []string
	daily   []string
	valid   map[string]struct{}
}

// New builds a List from in-memory words. Targets are added to the valid set
// unless valid is empty, in which case validation stays disabled.
func New(targets, valid []string) (*List, error) {
	t := normalizeAll(targets)
	if len(t) == 0 {
		return nil, ErrEmpty
	}
	l := &List{targets: t, daily: slices.Clone(t), valid: toSet(normalizeAll(valid))}
	if len(l.valid) > 0 {
		for _, w := range t {
			l.valid[w] = struct{}{}
		}
	}
	return l, nil
}

// Load reads the target and valid lists.
//   - An empty targetsPath uses the embedded target list.
//   - An empty validPath uses the embedded valid list.
func Load(targetsPath, validPath string) (*List, error) {
	targets, err := readList(targetsPath, assets.TargetWords)
	if err != nil {
		return nil, fmt.Errorf("read target words: %w", err)
	}
	valid, err := readList(validPath, assets.ValidWords)
	if err != nil {
		return nil, fmt.Errorf("read valid words: %w", err)
	}
	l, err := New(targets, valid)
	if err != nil {
		return nil, err
	}
	if len(l.valid) == 0 {
		log.Warn().Msg("no valid words found, guesses will not be validated")
	}
	a, v := l.Stats()
	log.Info().Int("targets", a).Int("valid", v).Msg("word lists loaded")
	return l, nil
}

func readList(path string, fallback func() (io.ReadCloser, error)) ([]string, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if path == "" {
		rc, err = fallback()
	} else {
		rc, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadWords(rc)
}

// ReadWords reads one word per line, skipping blank and '#' lines.
func ReadWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// normalizeAll uppercases, drops invalid entries and removes duplicates, keeping order.
func normalizeAll(in []string) []string {
	out := lo.FilterMap(in, func(w string, _ int) (string, bool) {
		w = strings.ToUpper(strings.TrimSpace(w))
		return w, utf8.RuneCountInString(w) >= game.MinWordLength && isAlpha(w)
	})
	return lo.Uniq(out)
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s consists only of letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsValid reports whether w may be guessed.
func (l *List) IsValid(w string) bool {
	if len(l.valid) == 0 {
		return true
	}
	_, ok := l.valid[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// IsTarget reports whether w is a target word.
func (l *List) IsTarget(w string) bool {
	return lo.Contains(l.targets, strings.ToUpper(strings.TrimSpace(w)))
}

// NextTarget returns the first target not in played, or a random target
// once every word has been played.
func (l *List) NextTarget(played map[string]struct{}) string {
	for _, w := range l.targets {
		if _, ok := played[w]; !ok {
			return w
		}
	}
	return l.Random()
}

// Random returns a cryptographically random target.
func (l *List) Random() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(l.targets))))
	return l.targets[n.Int64()]
}

// Daily returns the deterministic word of the day and its index in the target
// file. The result depends only on the date, the salt and the file order.
func (l *List) Daily(t time.Time, salt string) (int, string) {
	idx := daily.WordIndex(daily.DateKey(t), salt, len(l.daily))
	return idx, l.daily[idx]
}

// Shuffle randomizes the NextTarget order so players do not share a sequence.
// The daily order is left untouched.
func (l *List) Shuffle() {
	l.targets = lo.Shuffle(slices.Clone(l.targets))
}

// Stats returns counts of loaded words: (targets, valid).
func (l *List) Stats() (targetCount int, validCount int) {
	return len(l.targets), len(l.valid)
}
