package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// Pool is the minimal pgxpool surface the store uses; satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects a PostgresStore to the given database URL.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS mappings (
	ticker     TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS decisions (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	ticker       TEXT NOT NULL,
	feed_name    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	matched_name TEXT,
	matched_id   TEXT,
	score        NUMERIC,
	notes        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_decisions_ticker ON decisions(ticker);
CREATE INDEX IF NOT EXISTS idx_decisions_kind ON decisions(kind);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadMappings(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT ticker, company_id FROM mappings`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load mappings")
	}
	defer rows.Close()

	mappings := map[string]string{}
	for rows.Next() {
		var ticker, id string
		if err := rows.Scan(&ticker, &id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mapping")
		}
		mappings[ticker] = id
	}
	return mappings, eris.Wrap(rows.Err(), "postgres: load mappings iterate")
}

const putMappingSQL = `INSERT INTO mappings (ticker, company_id, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (ticker) DO UPDATE SET company_id = EXCLUDED.company_id, updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) PutMapping(ctx context.Context, ticker, companyID string) error {
	_, err := s.pool.Exec(ctx, putMappingSQL, ticker, companyID, time.Now().UTC())
	return eris.Wrapf(err, "postgres: put mapping %s", ticker)
}

func (s *PostgresStore) SaveMappings(ctx context.Context, mappings map[string]string) error {
	now := time.Now().UTC()
	for ticker, id := range mappings {
		if _, err := s.pool.Exec(ctx, putMappingSQL, ticker, id, now); err != nil {
			return eris.Wrapf(err, "postgres: save mapping %s", ticker)
		}
	}
	return nil
}

func (s *PostgresStore) AppendDecision(ctx context.Context, d model.Decision) error {
	at := d.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var score *float64
	if d.Score != nil {
		score = d.Score
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO decisions (id, ticker, feed_name, kind, matched_name, matched_id, score, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), d.Ticker, d.FeedName, string(d.Kind), d.MatchedName, d.MatchedID, score, d.Notes, at,
	)
	return eris.Wrapf(err, "postgres: append decision %s", d.Ticker)
}
