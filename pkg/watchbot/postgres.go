package watchbot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps watchlists in the movies table, one row per record.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS movies (
			chat_id    BIGINT NOT NULL,
			position   INTEGER NOT NULL,
			title      TEXT NOT NULL,
			watched    BOOLEAN NOT NULL DEFAULT FALSE,
			added_by   TEXT NOT NULL DEFAULT '',
			added_at   TIMESTAMPTZ NOT NULL,
			watched_by TEXT NOT NULL DEFAULT '',
			watched_at TIMESTAMPTZ,
			PRIMARY KEY (chat_id, position)
		);
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create movies table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, chatID int64) ([]Movie, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT title, watched, added_by, added_at, watched_by, watched_at
		FROM movies WHERE chat_id = $1
		ORDER BY position;
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}

	movies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Movie, error) {
		var (
			m         Movie
			watchedAt *time.Time
		)
		if err := row.Scan(&m.Title, &m.Watched, &m.AddedBy, &m.AddedAt, &m.WatchedBy, &watchedAt); err != nil {
			return Movie{}, err
		}
		if watchedAt != nil {
			m.WatchedAt = *watchedAt
		}
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan movies: %w", err)
	}
	return movies, nil
}

func (s *PostgresStore) Save(ctx context.Context, chatID int64, movies []Movie) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM movies WHERE chat_id = $1;`, chatID); err != nil {
			return fmt.Errorf("failed to clear movies: %w", err)
		}

		rows := make([][]any, 0, len(movies))
		for i, m := range movies {
			var watchedAt *time.Time
			if !m.WatchedAt.IsZero() {
				watchedAt = &m.WatchedAt
			}
			rows = append(rows, []any{chatID, i, m.Title, m.Watched, m.AddedBy, m.AddedAt, m.WatchedBy, watchedAt})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"movies"},
			[]string{"chat_id", "position", "title", "watched", "added_by", "added_at", "watched_by", "watched_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to insert movies: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
