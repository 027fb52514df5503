package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

// Postgres keeps the session in a shared postgres database, for
// deployments where several editor instances need one durable store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool and ensures the sessions
// table exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS sessions (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Retrieve(ctx context.Context) (*contentrepo.Session, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM sessions WHERE key = $1`, FixedKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess contentrepo.Session
	if err := json.Unmarshal(value, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (p *Postgres) Store(ctx context.Context, sess *contentrepo.Session) error {
	value, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO sessions (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		FixedKey, value)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
