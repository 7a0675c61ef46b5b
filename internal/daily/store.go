package daily

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"
)

// Result is one player's finished daily challenge, won or lost.
type Result struct {
	PlayerID  string `json:"playerId"`
	Handle    string `json:"handle"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Won       bool   `json:"won"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LBRow is one leaderboard entry. Player ids stay server side.
type LBRow struct {
	PlayerID  string `json:"-"`
	Handle    string `json:"handle"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store records daily results. A player has at most one result per date;
// later inserts for the same (player, date) are ignored.
type Store interface {
	// AlreadyPlayed reports whether the player finished the date, won or lost.
	AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error)
	InsertResult(ctx context.Context, r Result) error
	// Leaderboard lists wins only, ordered by elapsed time, then guesses, then insertion order.
	Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error)
}

const defaultLimit = 20

// SQLStore keeps results in the daily_results table.
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?",
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

func (s *SQLStore) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, handle, date, word_index, won, guesses, elapsed_ms)
		VALUES(?,?,?,?,?,?,?)`, r.PlayerID, r.Handle, r.Date, r.WordIndex, r.Won, r.Guesses, r.ElapsedMs,
	)
	return err
}

func (s *SQLStore) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, handle, guesses, elapsed_ms
		FROM daily_results
		WHERE date=? AND won=1
		ORDER BY elapsed_ms ASC, guesses ASC, id ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Handle, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	results []Result
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) AlreadyPlayed(_ context.Context, playerID, date string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(playerID, date), nil
}

func (m *MemoryStore) find(playerID, date string) bool {
	for _, r := range m.results {
		if r.PlayerID == playerID && r.Date == date {
			return true
		}
	}
	return false
}

func (m *MemoryStore) InsertResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.find(r.PlayerID, r.Date) {
		m.results = append(m.results, r)
	}
	return nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	m.mu.RLock()
	var day []Result
	for _, r := range m.results {
		if r.Date == date && r.Won {
			day = append(day, r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(day, func(i, j int) bool {
		if day[i].ElapsedMs != day[j].ElapsedMs {
			return day[i].ElapsedMs < day[j].ElapsedMs
		}
		return day[i].Guesses < day[j].Guesses
	})
	out := make([]LBRow, 0, min(limit, len(day)))
	for _, r := range day {
		if len(out) == limit {
			break
		}
		out = append(out, LBRow{PlayerID: r.PlayerID, Handle: r.Handle, Guesses: r.Guesses, ElapsedMs: r.ElapsedMs})
	}
	return out, nil
}

// Elapsed converts a duration to whole milliseconds for a Result.
func Elapsed(start, end time.Time) int {
	return int(end.Sub(start).Milliseconds())
}
