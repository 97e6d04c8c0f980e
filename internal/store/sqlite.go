package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS mappings (
	ticker     TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS decisions (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	feed_name    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	matched_name TEXT,
	matched_id   TEXT,
	score        REAL,
	notes        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_decisions_ticker ON decisions(ticker);
CREATE INDEX IF NOT EXISTS idx_decisions_kind ON decisions(kind);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadMappings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, company_id FROM mappings`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load mappings")
	}
	defer rows.Close()

	mappings := map[string]string{}
	for rows.Next() {
		var ticker, id string
		if err := rows.Scan(&ticker, &id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mapping")
		}
		mappings[ticker] = id
	}
	return mappings, eris.Wrap(rows.Err(), "sqlite: load mappings iterate")
}

func (s *SQLiteStore) PutMapping(ctx context.Context, ticker, companyID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mappings (ticker, company_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(ticker) DO UPDATE SET company_id = excluded.company_id, updated_at = excluded.updated_at`,
		ticker, companyID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put mapping %s", ticker)
}

func (s *SQLiteStore) SaveMappings(ctx context.Context, mappings map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for ticker, id := range mappings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mappings (ticker, company_id, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(ticker) DO UPDATE SET company_id = excluded.company_id, updated_at = excluded.updated_at`,
			ticker, id, now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: save mapping %s", ticker)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

func (s *SQLiteStore) AppendDecision(ctx context.Context, d model.Decision) error {
	at := d.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var score sql.NullFloat64
	if d.Score != nil {
		score = sql.NullFloat64{Float64: *d.Score, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, ticker, feed_name, kind, matched_name, matched_id, score, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), d.Ticker, d.FeedName, string(d.Kind), d.MatchedName, d.MatchedID, score, d.Notes, at,
	)
	return eris.Wrapf(err, "sqlite: append decision %s", d.Ticker)
}
