package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// sqlStore keeps players in the players table. Word lists, the last game and
// daily metadata are stored as JSON text columns.
type sqlStore struct {
	db *sql.DB
}

// NewSQLStore wraps a migrated database handle.
func NewSQLStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Load(ctx context.Context, id string) (*Player, error) {
	var (
		p                  Player
		played, won        string
		lastGame, dailyRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, handle, first_name, last_name, played_words, won_words, games, wins, last_game, daily
		FROM players WHERE id=?`, id,
	).Scan(&p.ID, &p.Handle, &p.FirstName, &p.LastName, &played, &won,
		&p.Score.Games, &p.Score.Wins, &lastGame, &dailyRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(played), &p.PlayedWords); err != nil {
		return nil, fmt.Errorf("decode played_words: %w", err)
	}
	if err := json.Unmarshal([]byte(won), &p.WonWords); err != nil {
		return nil, fmt.Errorf("decode won_words: %w", err)
	}
	if lastGame.Valid {
		if err := json.Unmarshal([]byte(lastGame.String), &p.LastGame); err != nil {
			return nil, fmt.Errorf("decode last_game: %w", err)
		}
	}
	if dailyRaw.Valid {
		if err := json.Unmarshal([]byte(dailyRaw.String), &p.Daily); err != nil {
			return nil, fmt.Errorf("decode daily: %w", err)
		}
	}
	return fixup(&p), nil
}

func (s *sqlStore) Save(ctx context.Context, p *Player) error {
	played, err := json.Marshal(nonNil(p.PlayedWords))
	if err != nil {
		return err
	}
	won, err := json.Marshal(nonNil(p.WonWords))
	if err != nil {
		return err
	}
	lastGame, err := nullJSON(p.LastGame)
	if err != nil {
		return err
	}
	dailyRaw, err := nullJSON(p.Daily)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, handle, first_name, last_name, played_words, won_words, games, wins, last_game, daily, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			handle=excluded.handle,
			first_name=excluded.first_name,
			last_name=excluded.last_name,
			played_words=excluded.played_words,
			won_words=excluded.won_words,
			games=excluded.games,
			wins=excluded.wins,
			last_game=excluded.last_game,
			daily=excluded.daily,
			updated_at=excluded.updated_at`,
		p.ID, p.Handle, p.FirstName, p.LastName, string(played), string(won),
		p.Score.Games, p.Score.Wins, lastGame, dailyRaw, time.Now().UTC().Format(time.RFC3339))
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// nullJSON encodes v, mapping a nil pointer to SQL NULL.
func nullJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
