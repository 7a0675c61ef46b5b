// Package daily implements the word-of-the-day challenge: a deterministic
// target per calendar date and a per-date leaderboard of daily results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var ErrBadDate = errors.New("daily: date must be YYYY-MM-DD")

// DateKey returns the challenge date for t: YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDate checks that key is a date in DateKey form and returns it in canonical form.
func ParseDate(key string) (string, error) {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return "", fmt.Errorf("%q: %w", key, ErrBadDate)
	}
	return DateKey(t), nil
}

// WordIndex maps a date key to a position in a word list of length n.
// The index is the first 8 bytes of HMAC-SHA256(salt, date) modulo n, so every
// server sharing the salt and the list agrees on the word for a date.
func WordIndex(date, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(date))
	return int(binary.BigEndian.Uint64(h.Sum(nil)[:8]) % uint64(n))
}
