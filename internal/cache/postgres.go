package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-facts/internal/facts"
)

// pgPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    pgPool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS company_facts_cache (
	id          TEXT PRIMARY KEY,
	ticker      TEXT NOT NULL,
	facts       JSONB NOT NULL,
	filing_date TIMESTAMPTZ NOT NULL,
	stored_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_facts_cache_ticker ON company_facts_cache(ticker, stored_at DESC);
`

// Migrate creates the cache table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Get returns the newest cached entry for a ticker.
func (s *PostgresStore) Get(ctx context.Context, ticker string) (*Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT facts, filing_date FROM company_facts_cache
		 WHERE ticker = $1 ORDER BY stored_at DESC, filing_date DESC LIMIT 1`, ticker)

	var payload []byte
	var filingDate time.Time
	if err := row.Scan(&payload, &filingDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached facts")
	}

	var resp facts.CompanyFactsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, eris.Wrap(err, "postgres: decode cached facts")
	}

	return &Entry{Ticker: ticker, FilingDate: filingDate.UTC(), Facts: resp}, nil
}

// Put inserts a new row; history is append-only.
func (s *PostgresStore) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry.Facts)
	if err != nil {
		return eris.Wrap(err, "postgres: encode facts")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO company_facts_cache (id, ticker, facts, filing_date)
		 VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), entry.Ticker, payload, entry.FilingDate.UTC())
	return eris.Wrap(err, "postgres: insert cached facts")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
