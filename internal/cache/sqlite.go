package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/edgar-facts/internal/facts"
)

// SQLiteStore implements Store using modernc.org/sqlite. Useful for local
// development where no Convex deployment is available.
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
CREATE TABLE IF NOT EXISTS company_facts_cache (
	id          TEXT PRIMARY KEY,
	ticker      TEXT NOT NULL,
	facts       TEXT NOT NULL,
	filing_date DATETIME NOT NULL,
	stored_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_facts_cache_ticker ON company_facts_cache(ticker, stored_at DESC);
`

// Migrate creates the cache table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Get returns the newest cached entry for a ticker.
func (s *SQLiteStore) Get(ctx context.Context, ticker string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT facts, filing_date FROM company_facts_cache
		 WHERE ticker = ? ORDER BY stored_at DESC, filing_date DESC LIMIT 1`, ticker)

	var payload string
	var filingDate time.Time
	if err := row.Scan(&payload, &filingDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get cached facts")
	}

	var resp facts.CompanyFactsResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode cached facts")
	}

	return &Entry{Ticker: ticker, FilingDate: filingDate.UTC(), Facts: resp}, nil
}

// Put inserts a new row; history is append-only.
func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry.Facts)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode facts")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company_facts_cache (id, ticker, facts, filing_date, stored_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), entry.Ticker, string(payload), entry.FilingDate.UTC(), time.Now().UTC())
	return eris.Wrap(err, "sqlite: insert cached facts")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
