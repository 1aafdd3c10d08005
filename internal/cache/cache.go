// Package cache stores normalized company facts keyed by ticker and filing
// date. Every store is a new insert; reads return the newest entry. Cache
// failures always degrade to "proceed without cache" and never surface to
// the caller of the facts service.
package cache

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-facts/internal/config"
	"github.com/sells-group/edgar-facts/internal/facts"
)

// Entry is one stored normalization result.
type Entry struct {
	Ticker     string
	FilingDate time.Time
	Facts      facts.CompanyFactsResponse
}

// Store is the get/put contract the facts service consumes.
type Store interface {
	// Get returns the most recent entry for a ticker, or (nil, nil) when
	// absent.
	Get(ctx context.Context, ticker string) (*Entry, error)

	// Put inserts a new entry. Existing entries are never updated in place.
	Put(ctx context.Context, entry Entry) error

	Close() error
}

// Open selects a cache backend from configuration. An unset backend is not
// an error: caching becomes a no-op and every request recomputes.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "":
		return Disabled(), nil
	case "convex":
		return NewConvex(ConvexOptions{
			BaseURL:      cfg.ConvexURL,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
		}), nil
	case "sqlite":
		s, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// disabledStore is the no-op backend used when no cache is configured.
type disabledStore struct{}

// Disabled returns a Store whose reads always miss and whose writes are
// dropped.
func Disabled() Store { return disabledStore{} }

func (disabledStore) Get(ctx context.Context, ticker string) (*Entry, error) { return nil, nil }
func (disabledStore) Put(ctx context.Context, entry Entry) error             { return nil }
func (disabledStore) Close() error                                           { return nil }
