package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_fingerprints (
    template_path TEXT PRIMARY KEY,
    fingerprint   TEXT NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists fingerprints in PostgreSQL so they survive restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the fingerprint table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create fingerprint table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, templatePath string) (string, bool, error) {
	var fp string
	err := s.pool.QueryRow(ctx,
		`SELECT fingerprint FROM sync_fingerprints WHERE template_path = $1`,
		templatePath,
	).Scan(&fp)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query fingerprint: %w", err)
	}
	return fp, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, templatePath, fingerprint string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_fingerprints (template_path, fingerprint, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (template_path)
		DO UPDATE SET fingerprint = EXCLUDED.fingerprint, updated_at = now()`,
		templatePath, fingerprint,
	)
	if err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT template_path, fingerprint FROM sync_fingerprints`)
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, fp string
		if err := rows.Scan(&path, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		out[path] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return out, nil
}
