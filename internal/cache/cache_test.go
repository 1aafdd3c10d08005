package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-facts/internal/config"
)

func TestOpen_DisabledWhenUnset(t *testing.T) {
	store, err := Open(context.Background(), config.CacheConfig{})
	require.NoError(t, err)

	entry, err := store.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, store.Put(context.Background(), Entry{Ticker: "AAPL", FilingDate: time.Now()}))
	require.NoError(t, store.Close())
}

func TestOpen_SQLite(t *testing.T) {
	store, err := Open(context.Background(), config.CacheConfig{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	entry, err := store.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.CacheConfig{Backend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
