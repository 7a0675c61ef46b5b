package words

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWordsSkipsCommentsAndBlanks(t *testing.T) {
	in := "# header\ncrane\n\n  slate  \n#trailing\n"
	got, err := ReadWords(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"crane", "slate"}, got)
}

func TestNewNormalizes(t *testing.T) {
	l, err := New([]string{"crane", "Crane", "ab", "no-go", "slate"}, []string{"adieu"})
	require.NoError(t, err)
	a, v := l.Stats()
	assert.Equal(t, 2, a, "duplicates, short and non-letter words are dropped")
	assert.Equal(t, 3, v, "targets are always valid")
	assert.True(t, l.IsTarget("crane"))
	assert.True(t, l.IsValid("adieu"))
	assert.True(t, l.IsValid("SLATE"))
	assert.False(t, l.IsValid("zzzzz"))
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil, []string{"crane"})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestEmptyValidListAcceptsAnything(t *testing.T) {
	l, err := New([]string{"crane"}, nil)
	require.NoError(t, err)
	assert.True(t, l.IsValid("qwxyz"))
}

func TestNextTarget(t *testing.T) {
	l, err := New([]string{"crane", "slate", "ghost"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "CRANE", l.NextTarget(nil))
	assert.Equal(t, "GHOST", l.NextTarget(map[string]struct{}{"CRANE": {}, "SLATE": {}}))

	all := map[string]struct{}{"CRANE": {}, "SLATE": {}, "GHOST": {}}
	for i := 0; i < 10; i++ {
		assert.True(t, l.IsTarget(l.NextTarget(all)), "falls back to a random target")
	}
}

func TestDailyIsDeterministic(t *testing.T) {
	l, err := New([]string{"crane", "slate", "ghost", "pride"}, nil)
	require.NoError(t, err)
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	i1, w1 := l.Daily(day, "salt")
	i2, w2 := l.Daily(day.Add(10*time.Hour), "salt")
	assert.Equal(t, i1, i2)
	assert.Equal(t, w1, w2)
	assert.True(t, l.IsTarget(w1))
}

func TestDailySurvivesShuffle(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	var words []string
	for i := 0; i < 5; i++ {
		l, err := Load("", "")
		require.NoError(t, err)
		l.Shuffle()
		idx, w := l.Daily(day, "salt")
		words = append(words, w)

		fresh, err := Load("", "")
		require.NoError(t, err)
		wantIdx, want := fresh.Daily(day, "salt")
		assert.Equal(t, wantIdx, idx)
		assert.Equal(t, want, w)
	}
	for _, w := range words[1:] {
		assert.Equal(t, words[0], w, "every process serves the same daily word")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	targets := filepath.Join(dir, "targets.txt")
	valid := filepath.Join(dir, "valid.txt")
	require.NoError(t, os.WriteFile(targets, []byte("# targets\nhouse\nmouse\n"), 0o644))
	require.NoError(t, os.WriteFile(valid, []byte("louse\n"), 0o644))

	l, err := Load(targets, valid)
	require.NoError(t, err)
	a, v := l.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, v)
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	l, err := Load("", "")
	require.NoError(t, err)
	a, v := l.Stats()
	assert.Positive(t, a)
	assert.GreaterOrEqual(t, v, a)
	assert.True(t, l.IsTarget("crane"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), "")
	assert.Error(t, err)
}
