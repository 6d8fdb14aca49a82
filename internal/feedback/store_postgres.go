package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed feedback store. Records are upserted
// by composite key, so a save always replaces the previous rating.
//
// Expected table:
//
//	CREATE TABLE feedback (
//	    key        TEXT PRIMARY KEY,
//	    rating     INT NOT NULL,
//	    comment    TEXT NOT NULL DEFAULT '',
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed feedback store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, key Key) (Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT rating, comment FROM feedback WHERE key = $1`,
		key.String(),
	).Scan(&rec.Rating, &rec.Comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load feedback: %w", err)
	}
	return rec, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, key Key, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO feedback (key, rating, comment, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE
		 SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()`,
		key.String(), rec.Rating, rec.Comment,
	)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
