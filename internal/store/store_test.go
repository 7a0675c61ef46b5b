package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/badwordle/internal/db"
	"github.com/robalobadob/badwordle/internal/game"
)

func stores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "players.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
		"sqlite": NewSQLStore(conn),
	}
}

func samplePlayer() *Player {
	return &Player{
		ID:          "p-1",
		Handle:      "qubyte",
		FirstName:   "Q",
		PlayedWords: []string{"CRANE", "SLATE"},
		WonWords:    []string{"CRANE"},
		Score:       Score{Games: 2, Wins: 1},
		LastGame:    &game.Record{TargetWord: "SLATE", Attempts: []string{"CRANE", "SLOTH"}},
		Daily:       &Daily{Date: "2026-10-19", WordIndex: 3, Start: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.Load(ctx, "p-1")
			assert.ErrorIs(t, err, ErrNotFound)

			p := samplePlayer()
			require.NoError(t, st.Save(ctx, p))

			got, err := st.Load(ctx, "p-1")
			require.NoError(t, err)
			assert.Equal(t, p, got)

			// Updates replace the stored player.
			got.Score.Games++
			got.LastGame = nil
			got.Daily = nil
			require.NoError(t, st.Save(ctx, got))
			again, err := st.Load(ctx, "p-1")
			require.NoError(t, err)
			assert.Equal(t, 3, again.Score.Games)
			assert.Nil(t, again.LastGame)
			assert.Nil(t, again.Daily)
		})
	}
}

func TestStoreRestoresGameStatus(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g, err := game.New("ERASE")
			require.NoError(t, err)
			for _, w := range []string{"ELOPE", "SEARS", "ERASE"} {
				_, err := g.PlayTurn(w)
				require.NoError(t, err)
			}
			rec := g.Record()
			require.NoError(t, st.Save(ctx, &Player{ID: "p-2", LastGame: &rec}))

			got, err := st.Load(ctx, "p-2")
			require.NoError(t, err)
			restored, err := game.FromRecord(*got.LastGame)
			require.NoError(t, err)
			assert.Equal(t, game.StatusWon, restored.Status())
			assert.Equal(t, g.AttemptedLetters(), restored.AttemptedLetters())
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	p := samplePlayer()
	require.NoError(t, st.Save(ctx, p))
	p.PlayedWords[0] = "XXXXX"
	p.LastGame.Attempts[0] = "XXXXX"

	got, err := st.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "CRANE", got.PlayedWords[0])
	assert.Equal(t, "CRANE", got.LastGame.Attempts[0])
}

func TestLoadBackfillsPlayedWords(t *testing.T) {
	dir := t.TempDir()
	doc := `{"id":"old","wonWords":["CRANE","SLATE"],"score":{"games":2,"wins":2}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte(doc), 0o644))

	st, err := NewFileStore(dir)
	require.NoError(t, err)
	p, err := st.Load(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, []string{"CRANE", "SLATE"}, p.PlayedWords)
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = st.Load(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, st.Save(context.Background(), &Player{ID: ""}))
}

func TestNewFileStoreMissingDir(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "0% (0/0)", Score{}.String())
	assert.Equal(t, "67% (2/3)", Score{Games: 3, Wins: 2}.String())
}
