// AngelaMos | 2026
// postgres.go

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/edition-console/internal/config"
)

const schema = `
	CREATE TABLE IF NOT EXISTS console_sessions (
		sid        TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      TEXT        NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (sid, key)
	);
	CREATE INDEX IF NOT EXISTS console_sessions_expires_at_idx
		ON console_sessions (expires_at)`

// PostgresStore keeps one row per session key. Expired rows are ignored on
// read and removed by Sweep.
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		now: time.Now,
	}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create session schema: %w", err)
	}
	return nil
}

type sessionRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (s *PostgresStore) Get(ctx context.Context, id string) (map[string]string, error) {
	query := `
		SELECT key, value
		FROM console_sessions
		WHERE sid = $1 AND expires_at > $2`

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, id, s.now()); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	return values, nil
}

func (s *PostgresStore) Set(
	ctx context.Context,
	id string,
	values map[string]string,
	ttl time.Duration,
) (err error) {
	if len(values) == 0 {
		return nil
	}

	expiresAt := s.now().Add(ttl)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set session: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // original error wins
		}
	}()

	upsert := `
		INSERT INTO console_sessions (sid, key, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sid, key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	for key, value := range values {
		if _, err = tx.ExecContext(ctx, upsert, id, key, value, expiresAt); err != nil {
			return fmt.Errorf("set session key %s: %w", key, err)
		}
	}

	touch := `
		UPDATE console_sessions
		SET expires_at = $2
		WHERE sid = $1`

	if _, err = tx.ExecContext(ctx, touch, id, expiresAt); err != nil {
		return fmt.Errorf("set session: refresh expiry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("set session: commit: %w", err)
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string, keys ...string) error {
	query := `
		DELETE FROM console_sessions
		WHERE sid = $1 AND key = $2`

	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, query, id, key); err != nil {
			return fmt.Errorf("delete session key %s: %w", key, err)
		}
	}

	return nil
}

func (s *PostgresStore) Destroy(ctx context.Context, id string) error {
	query := `DELETE FROM console_sessions WHERE sid = $1`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	query := `DELETE FROM console_sessions WHERE expires_at <= $1`

	result, err := s.db.ExecContext(ctx, query, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: rows affected: %w", err)
	}

	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Kind() string {
	return config.SessionStorePostgres
}
